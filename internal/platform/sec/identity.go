// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Identity is the minimal projection of a user that is attached to an
// authenticated request. It is re-read from the credential store on every
// request, never trusted from the cookie alone.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
