// Package auth define el puerto de verificación de identidad. Los adapters
// viven en internal/adapters/auth.
package auth

import "context"

// Claims identifica al usuario autenticado. UserID es el mismo ID que se usa
// como patientID o caretakerID en las rutas; no hay tabla de usuarios propia.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
}

// AuthVerifier valida un bearer token. Un error significa 401.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
