package models

import "carbon-track/utils"

// User sert uniquement de marqueur d'authentification.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Key retourne l'identité utilisée pour indexer les slots de stockage.
func (u User) Key() string {
	return utils.NormalizeEmail(u.Email)
}
