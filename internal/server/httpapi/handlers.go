package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/admagic/internal/common"
	"github.com/dmitrijs2005/admagic/internal/server/services"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
	Password    string `json:"password"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func authResponseOf(msg string, res *services.AuthResult) authResponse {
	return authResponse{
		Message: msg,
		User:    toUserJSON(res.User),
		Session: sessionJSON{
			Token:     res.Session.Token,
			Active:    true,
			ExpiresAt: res.Session.ExpiresAt.UTC(),
		},
		AccessToken: res.Session.Token,
		TokenType:   "bearer",
	}
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	res, err := s.auth.SignUp(r.Context(), services.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Username: req.Username,
	})
	if err != nil {
		s.metrics.AuthEvent("sign_up", outcome(err))
		s.writeError(r.Context(), w, err)
		return
	}

	s.metrics.AuthEvent("sign_up", "success")
	writeJSON(w, http.StatusOK, authResponseOf("Registration successful. Please check your email to verify your account.", res))
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	res, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.metrics.AuthEvent("sign_in", outcome(err))
		s.writeError(r.Context(), w, err)
		return
	}

	s.metrics.AuthEvent("sign_in", "success")
	writeJSON(w, http.StatusOK, authResponseOf("Signed in successfully", res))
}

// signOut always answers 200: the client clears its credential regardless.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	token, _ := common.BearerToken(r.Header.Get(common.AuthorizationHeader))
	if err := s.auth.SignOut(r.Context(), token); err != nil {
		s.logger.Warn(r.Context(), "sign-out failed", "error", err)
	}
	s.metrics.AuthEvent("sign_out", "success")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Signed out successfully"})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	res, err := s.auth.Session(r.Context(), tokenFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			s.writeUnauthorized(w, "Token expired")
		case errors.Is(err, common.ErrInvalidToken):
			s.writeUnauthorized(w, "Invalid or expired token")
		default:
			s.writeError(r.Context(), w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:    toUserJSON(res.User),
		Session: sessionJSON{Active: true, ExpiresAt: res.Session.ExpiresAt.UTC()},
	})
}

func (s *Server) sendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if err := s.auth.SendVerificationEmail(r.Context(), req.Email); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "If the account exists, a verification email has been sent"})
}

func (s *Server) forgetPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if err := s.auth.ForgetPassword(r.Context(), req.Email); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "If the account exists, a password reset email has been sent"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	password := req.NewPassword
	if password == "" {
		password = req.Password
	}
	if err := s.auth.ResetPassword(r.Context(), req.Token, password); err != nil {
		s.metrics.AuthEvent("reset_password", outcome(err))
		s.writeError(r.Context(), w, err)
		return
	}

	s.metrics.AuthEvent("reset_password", "success")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset"})
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.VerifyEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Email verified"})
}

// outcome labels a failed auth event: client mistakes versus server faults.
func outcome(err error) string {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrUserExists),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return "rejected"
	default:
		return "error"
	}
}
