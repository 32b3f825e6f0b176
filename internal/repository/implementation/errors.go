package implementation

import (
	"errors"

	"messenger-be/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// isClientMsgConflict reports a violation of the (chat_id, client_msg_id)
// unique index only. Other unique violations, a primary key clash included,
// are ordinary store failures.
func isClientMsgConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == model.UniqueChatClientMsg
}
