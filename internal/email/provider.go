package email

import "strings"

// Provider is the SMTP endpoint of a mail service.
type Provider struct {
	Host string
	Port int
	SSL  bool
}

var providers = map[string]Provider{
	"gmail":    {Host: "smtp.gmail.com", Port: 465, SSL: true},
	"outlook":  {Host: "smtp.office365.com", Port: 587},
	"hotmail":  {Host: "smtp.office365.com", Port: 587},
	"yahoo":    {Host: "smtp.mail.yahoo.com", Port: 465, SSL: true},
	"icloud":   {Host: "smtp.mail.me.com", Port: 587},
	"sendgrid": {Host: "smtp.sendgrid.net", Port: 587},
	"mailgun":  {Host: "smtp.mailgun.org", Port: 587},
}

// ResolveProvider maps a service name to its endpoint. An explicit host or
// port overrides the well-known values; unknown services fall back to gmail.
func ResolveProvider(service, host string, port int) Provider {
	p, ok := providers[strings.ToLower(strings.TrimSpace(service))]
	if !ok {
		p = providers["gmail"]
	}
	if host != "" {
		p.Host = host
	}
	if port != 0 {
		p.Port = port
		p.SSL = port == 465
	}
	return p
}
