package dto

type CreateChatRequest struct {
	Name           *string `json:"name"`
	Type           string  `json:"type" validate:"required,oneof=personal group"`
	ParticipantIds []int64 `json:"participant_ids" validate:"required,min=1,dive,gt=0"`
}

type ChatParticipant struct {
	Id    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChatResponse struct {
	Id           int64             `json:"id"`
	Name         *string           `json:"name"`
	Type         string            `json:"type"`
	Participants []ChatParticipant `json:"participants"`
}
