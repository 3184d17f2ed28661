package forms

var Login = Schema{
	Name: "login",
	Fields: []Field{
		{Name: "username", Label: "Username", Type: Text, Required: true, Rule: "required,min=1"},
		{Name: "password", Label: "Password", Type: Password, Required: true, Rule: "required,min=1"},
	},
}

var Register = Schema{
	Name: "register",
	Fields: []Field{
		{Name: "username", Label: "Username", Type: Text, Required: true, Rule: "required,min=3"},
		{Name: "email", Label: "Email", Type: Email, Required: true, Rule: "required,email"},
		{Name: "password", Label: "Password", Type: Password, Required: true, Rule: "required,min=6"},
		{Name: "fullname", Label: "Full name", Type: Text, Required: true, Rule: "required"},
		{Name: "country", Label: "Country", Type: Text, Required: true, Rule: "required"},
	},
}

// StartBooking opens a booking attempt. ticketCount bounds the seat selection.
var StartBooking = Schema{
	Name: "start-booking",
	Fields: []Field{
		{Name: "flightId", Label: "Flight", Type: Number, Required: true, Rule: "required,gt=0"},
		{Name: "ticketCount", Label: "Tickets", Type: Number, Required: true, Rule: "required,gt=0,lte=9"},
	},
}

var Booking = Schema{
	Name: "booking",
	Fields: []Field{
		{Name: "fullName", Label: "Full name", Type: Text, Required: true, Rule: "required"},
		{Name: "email", Label: "Email", Type: Email, Required: true, Rule: "required,email"},
		{Name: "phone", Label: "Phone", Type: Tel, Rule: "omitempty,min=5"},
	},
}

var Passenger = Schema{
	Name: "passenger",
	Fields: []Field{
		{Name: "firstName", Label: "First name", Type: Text, Required: true, Rule: "required"},
		{Name: "lastName", Label: "Last name", Type: Text, Required: true, Rule: "required"},
		{Name: "email", Label: "Email", Type: Email, Required: true, Rule: "required,email"},
		{Name: "phone", Label: "Phone", Type: Tel, Rule: "omitempty,min=5"},
		{Name: "passportNumber", Label: "Passport number", Type: Text},
		{Name: "dateOfBirth", Label: "Date of birth", Type: Date, Rule: "omitempty,datetime=2006-01-02"},
		{Name: "nationality", Label: "Nationality", Type: Text},
	},
}

var Language = Schema{
	Name: "language",
	Fields: []Field{
		{Name: "language", Label: "Language", Type: Text, Required: true, Rule: "required,oneof=en ru kk"},
	},
}

var registry = map[string]Schema{}

func init() {
	for _, s := range []Schema{Login, Register, StartBooking, Booking, Passenger, Language} {
		registry[s.Name] = s
	}
}

func Lookup(name string) (Schema, bool) {
	s, ok := registry[name]
	return s, ok
}
