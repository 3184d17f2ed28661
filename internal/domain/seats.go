package domain

// FilterSeats drops malformed records, i.e. any seat without an identifier.
// Order of the remaining seats is preserved.
func FilterSeats(seats []Seat) []Seat {
	out := make([]Seat, 0, len(seats))
	for _, s := range seats {
		if s.ID == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func FindSeat(seats []Seat, id int64) (Seat, bool) {
	for _, s := range seats {
		if s.ID == id {
			return s, true
		}
	}
	return Seat{}, false
}
