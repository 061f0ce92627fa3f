package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP 2025 recommendation).
// With these values every PHC string is 97 characters long.
const (
	argonTime    = 3         // iterations
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 1         // parallelism
	argonKeyLen  = 32        // output hash length
	argonSaltLen = 16        // salt length
)

// Password length bounds.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 64
)

// Password is a plaintext password that satisfies the password policy.
// The only way to obtain one is NewPassword.
type Password struct {
	raw string
}

// PolicyError lists every policy rule a candidate password violates.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return "invalid input: " + strings.Join(e.Violations, "; ")
}

// Unwrap makes errors.Is(err, ErrInvalidInput) hold.
func (e *PolicyError) Unwrap() error {
	return ErrInvalidInput
}

// NewPassword validates raw against the password policy:
//   - not empty
//   - ASCII characters only
//   - between 12 and 64 characters
//   - at least one lowercase letter, one uppercase letter, one digit and
//     one special (non-alphanumeric) character
//
// Every rule is checked; the returned *PolicyError reports all violations.
func NewPassword(raw string) (Password, error) {
	if raw == "" {
		return Password{}, &PolicyError{Violations: []string{"Password cannot be empty"}}
	}

	ascii := true
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range raw {
		switch {
		case r > unicode.MaxASCII:
			ascii = false
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	var violations []string
	if !ascii {
		violations = append(violations, "Password must contain only ASCII characters")
	}
	if len(raw) < MinPasswordLength {
		violations = append(violations, fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if len(raw) > MaxPasswordLength {
		violations = append(violations, fmt.Sprintf("Password must be at most %d characters long", MaxPasswordLength))
	}
	if !hasLower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !hasUpper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !hasDigit {
		violations = append(violations, "Password must contain at least one digit")
	}
	if !hasSpecial {
		violations = append(violations, "Password must contain at least one special character")
	}

	if len(violations) > 0 {
		return Password{}, &PolicyError{Violations: violations}
	}
	return Password{raw: raw}, nil
}

// String never reveals the password.
func (p Password) String() string {
	return "[REDACTED]"
}

// Hash returns the Argon2id PHC string of the password with a fresh salt:
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
func (p Password) Hash() (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(p.raw), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify reports whether the password matches a stored PHC string.
// A stored value that is not a valid Argon2id PHC string is ErrInvalidFormat.
func (p Password) Verify(stored string) (bool, error) {
	salt, hash, params, err := decodePHC(stored)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	candidate := argon2.IDKey([]byte(p.raw), salt, params.time, params.memory, params.threads, uint32(len(hash))) //nolint:gosec // G115: hash length always fits uint32

	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

type argonParams struct {
	time    uint32
	memory  uint32
	threads uint8
}

// decodePHC parses an Argon2id PHC string into its components.
func decodePHC(encoded string) (salt, hash []byte, params argonParams, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 { //nolint:mnd // PHC format has exactly 6 $-delimited parts
		return nil, nil, params, fmt.Errorf("invalid PHC hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("unsupported argon2 version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return nil, nil, params, fmt.Errorf("parsing parameters: %w", err)
	}
	if params.time == 0 || params.threads == 0 {
		return nil, nil, params, fmt.Errorf("invalid argon2 parameters")
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}

	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}
	if len(hash) == 0 {
		return nil, nil, params, fmt.Errorf("empty hash")
	}

	return salt, hash, params, nil
}
