package domain

type (
	RoomName string
	MemberID string
)

type Room struct {
	Name RoomName
}
