// Package models holds the persisted records of the tracker: users,
// projects with their team membership, tasks, comments, attachments and the
// activity log. JSON tags follow the camelCase wire format of the API.
package models

// Document is the whole record set in one JSON value, the layout used for
// seeding and snapshot export.
type Document struct {
	Users    []UserRecord `json:"users"`
	Projects []Project    `json:"projects"`
	Tasks    []Task       `json:"tasks"`
	Comments []Comment    `json:"comments"`
}

// UserRecord is a User together with its password hash, used only inside a
// Document so snapshots can be restored with working credentials.
type UserRecord struct {
	User
	Password string `json:"password"`
}

// PublicDocument is a Document as served over the API. Users carry no
// password hash.
type PublicDocument struct {
	Users    []User    `json:"users"`
	Projects []Project `json:"projects"`
	Tasks    []Task    `json:"tasks"`
	Comments []Comment `json:"comments"`
}

// Public drops the credentials from d.
func (d *Document) Public() *PublicDocument {
	users := make([]User, len(d.Users))
	for i, rec := range d.Users {
		users[i] = rec.User
		users[i].Password = ""
	}
	return &PublicDocument{
		Users:    users,
		Projects: d.Projects,
		Tasks:    d.Tasks,
		Comments: d.Comments,
	}
}
