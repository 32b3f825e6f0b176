package dto

import "time"

type SendMessageRequest struct {
	Text        string  `json:"text" validate:"required,max=4096"`
	ClientMsgId *string `json:"client_msg_id" validate:"omitempty,max=36"`
}

type MessageResponse struct {
	Id        int64     `json:"id"`
	ChatId    int64     `json:"chat_id"`
	SenderId  int64     `json:"sender_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type HistoryQuery struct {
	Skip  int `query:"skip" validate:"min=0"`
	Limit int `query:"limit" validate:"min=0"`
}
