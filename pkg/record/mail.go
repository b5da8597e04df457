package record

// MailRecord is a mail-like item extracted from an archive or fetched
// from a CRM timeline. SentTime may arrive as an ISO-8601 string, a
// space-separated date-time string, or a native timestamp value, so it
// stays untyped until duplicate detection parses it.
type MailRecord struct {
	MessageID      string            `yaml:"message_id,omitempty" json:"message_id,omitempty"`
	Subject        string            `yaml:"subject" json:"subject"`
	Body           string            `yaml:"body" json:"body"`
	SenderEmail    string            `yaml:"sender_email" json:"sender_email"`
	RecipientEmail string            `yaml:"recipient_email,omitempty" json:"recipient_email,omitempty"`
	SentTime       any               `yaml:"sent_time,omitempty" json:"sent_time,omitempty"`
	Description    string            `yaml:"description,omitempty" json:"description,omitempty"` // free text, CRM side
	Headers        map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	RawHeaders     string            `yaml:"raw_headers,omitempty" json:"raw_headers,omitempty"`

	// Extra holds fields outside the known schema. Unknown fields are
	// carried, never dropped.
	Extra map[string]Value `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// ContactRecord is a structured CRM entity with the fields sync
// validation requires.
type ContactRecord struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`

	Extra map[string]Value `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// Record converts the contact into a generic field map for diffing.
func (c ContactRecord) Record() Record {
	r := Record{
		FieldID: c.ID,
		"name":  c.Name,
		"email": c.Email,
	}
	for field, value := range c.Extra {
		r[field] = value
	}
	return r
}

// ContactFromRecord builds a typed contact from a generic field map.
// Fields outside the known schema land in Extra.
func ContactFromRecord(r Record) ContactRecord {
	c := ContactRecord{ID: r.ID()}
	if v, ok := r["name"].(string); ok {
		c.Name = v
	}
	if v, ok := r["email"].(string); ok {
		c.Email = v
	}
	for field, value := range r {
		switch field {
		case FieldID, "name", "email":
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]Value)
			}
			c.Extra[field] = value
		}
	}
	return c
}
