package email

const (
	subjectLeadAssignedFmt     = "New lead assigned: %s"
	subjectLeadExpiringSoonFmt = "Lead %s expires on %s"
	subjectLeadExpiredFmt      = "Lead %s has expired"
)

const dateLayout = "Jan 2, 2006"
