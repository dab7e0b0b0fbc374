package mail

import "time"

type LeadAssignedEmailData struct {
	SellerName string
	LeadName   string
	LeadEmail  string
	AssignedAt time.Time
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
