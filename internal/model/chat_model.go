package model

type Chat struct {
	Id           int64   `gorm:"primaryKey;autoIncrement"`
	Name         *string `gorm:"type:varchar(255)"`
	Type         string  `gorm:"type:varchar(50);not null"`
	Participants []User  `gorm:"many2many:chat_members;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Chat) TableName() string {
	return "chats"
}

// ChatMember is the join row behind Chat.Participants.
type ChatMember struct {
	ChatId int64 `gorm:"primaryKey"`
	UserId int64 `gorm:"primaryKey;index"`
}

func (ChatMember) TableName() string {
	return "chat_members"
}

// Group shares its primary key with the chat it describes.
type Group struct {
	Id        int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"type:varchar(255);not null"`
	CreatorId *int64
	Members   []User `gorm:"many2many:group_members;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Group) TableName() string {
	return "groups"
}

type GroupMember struct {
	GroupId int64 `gorm:"primaryKey"`
	UserId  int64 `gorm:"primaryKey"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
