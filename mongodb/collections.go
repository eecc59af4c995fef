package mongodb

// Collection names. The per-role account collections mirror the login
// resolution order: admins, then students, then teachers.
const (
	AdminsCollection       = "admins"
	StudentsCollection     = "students"
	TeachersCollection     = "teachers"
	SessionsCollection     = "sessions"
	CoursesCollection      = "courses"
	DepartmentsCollection  = "departments"
	UserCoursesCollection  = "user_courses"
	DeviceResetsCollection = "device_resets"
)
