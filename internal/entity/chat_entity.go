package entity

const (
	ChatTypePersonal = "personal"
	ChatTypeGroup    = "group"
)

type Chat struct {
	Id           int64
	Name         *string
	Type         string
	Participants []User
}

func (c *Chat) ParticipantIds() []int64 {
	ids := make([]int64, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.Id)
	}
	return ids
}

func (c *Chat) HasParticipant(userId int64) bool {
	for _, p := range c.Participants {
		if p.Id == userId {
			return true
		}
	}
	return false
}

type User struct {
	Id    int64
	Name  string
	Email string
}
