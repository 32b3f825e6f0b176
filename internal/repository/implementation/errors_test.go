package implementation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsClientMsgConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{
			name: "client id unique index",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "unique_chat_client_msg"},
			want: true,
		},
		{
			name: "wrapped client id unique index",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "unique_chat_client_msg"}),
			want: true,
		},
		{
			name: "primary key clash",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "messages_pkey"},
			want: false,
		},
		{name: "unique violation without constraint", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "translated gorm error carries no constraint", err: gorm.ErrDuplicatedKey, want: false},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "unique_chat_client_msg"},
			want: false,
		},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isClientMsgConflict(tt.err))
		})
	}
}
