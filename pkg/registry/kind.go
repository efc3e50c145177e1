package registry

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform snake -output kind.gen.go

// Kind is a registered category of tenant-owned resource. Only kinds defined
// here can be targeted by the isolation store or the query builder; there is
// no way to reach SQL construction with a caller-supplied table name.
type Kind int

const (
	KindStudents Kind = iota
	KindEmployees
	KindAttendanceRecords
	KindIncidents
	KindSemesters
	KindEnrollments
)
