// Package auth provides credentials and API key authentication for http2sql.
//
// It implements:
//   - A password policy enforced by a smart constructor (NewPassword)
//   - Argon2id password hashing in PHC string format
//   - Opaque bearer API keys ("ak_prod_" + base64 of 32 random bytes)
//     stored only as their SHA-256 digest
//   - Sign-up, sign-in (issues a key) and key authentication over the
//     users and api_keys tables
//
// API keys are looked up by digest, so the plaintext never reaches the
// database. An expired key is rejected regardless of whether its digest
// matches, and every successful authentication records last_used_at.
package auth
