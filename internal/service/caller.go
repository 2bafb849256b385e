package service

// StudentCaller is an authenticated student. Only the request boundary constructs it,
// after the role claim has been checked.
type StudentCaller struct {
	ID uint
}

// AlumniCaller is an authenticated alumnus.
type AlumniCaller struct {
	ID uint
}

// ActivityActor describes whoever performed an audited action.
type ActivityActor struct {
	ID   uint
	Role string
}

const (
	roleStudent = "student"
	roleAlumni  = "alumni"
)

// Actor converts the caller for audit logging.
func (c StudentCaller) Actor() ActivityActor {
	return ActivityActor{ID: c.ID, Role: roleStudent}
}

// Actor converts the caller for audit logging.
func (c AlumniCaller) Actor() ActivityActor {
	return ActivityActor{ID: c.ID, Role: roleAlumni}
}
