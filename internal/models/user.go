package models

import "time"

// Capability - именованное право, проверяемое перед операцией.
type Capability string

const (
	CapArticleManager Capability = "ARTICLE_MANAGER"
	CapPublicDiscuss  Capability = "PUBLIC_DISCUSS"
)

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	RoleUser   = "user"
)

// roleCapabilities - какие права даёт каждая роль.
var roleCapabilities = map[string][]Capability{
	RoleAdmin:  {CapArticleManager, CapPublicDiscuss},
	RoleAuthor: {CapArticleManager, CapPublicDiscuss},
	RoleUser:   {CapPublicDiscuss},
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasCapability - даёт ли роль пользователя указанное право.
func (u *User) HasCapability(c Capability) bool {
	for _, have := range roleCapabilities[u.Role] {
		if have == c {
			return true
		}
	}
	return false
}
