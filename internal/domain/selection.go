package domain

type ToggleResult string

const (
	ToggleAdded    ToggleResult = "added"
	ToggleRemoved  ToggleResult = "removed"
	ToggleRejected ToggleResult = "rejected"
)

// Selection is an ordered set of seats bounded by Max. It never holds the
// same seat twice and never holds more than Max seats.
type Selection struct {
	Max   int    `json:"max"`
	Seats []Seat `json:"seats"`
}

func NewSelection(max int) Selection {
	return Selection{Max: max, Seats: []Seat{}}
}

// Toggle removes seat when it is already selected and appends it otherwise.
// Adding beyond Max leaves the selection unchanged and reports ToggleRejected;
// that is a capacity guard, not an error.
func (s *Selection) Toggle(seat Seat) ToggleResult {
	for i, sel := range s.Seats {
		if sel.ID == seat.ID {
			s.Seats = append(s.Seats[:i:i], s.Seats[i+1:]...)
			return ToggleRemoved
		}
	}
	if len(s.Seats) >= s.Max {
		return ToggleRejected
	}
	s.Seats = append(s.Seats, seat)
	return ToggleAdded
}

func (s Selection) Contains(id int64) bool {
	_, ok := FindSeat(s.Seats, id)
	return ok
}

func (s Selection) Len() int {
	return len(s.Seats)
}

func (s Selection) IDs() []int64 {
	ids := make([]int64, len(s.Seats))
	for i, seat := range s.Seats {
		ids[i] = seat.ID
	}
	return ids
}
