package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// signUpRequest is the request body for POST /auth/sign-up.
// The password is checked against the credential policy by the auth service.
type signUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password"`
}

// signInRequest is the request body for POST /auth/sign-in.
type signInRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password"`
}

// validateRequest runs struct-tag validation and renders every failure in
// one message.
func (s *Server) validateRequest(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// handleSignUp registers a new account.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	user, err := s.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, Envelope{
		Data:    user,
		Message: "User created successfully",
	})
}

// handleSignIn verifies credentials and issues a new API key.
// The plaintext key appears in this response only.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	issued, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Data:    issued,
		Message: "Sign in successful",
	})
}

// handleUserMetadata returns the account that owns the presented API key.
func (s *Server) handleUserMetadata(w http.ResponseWriter, r *http.Request) {
	record, ok := apiKeyFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "Missing or invalid Authorization header")
		return
	}

	user, err := s.auth.UserMetadata(r.Context(), record.UserUUID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Data:    user,
		Message: "User metadata retrieved successfully",
	})
}
