package http

import (
	"errors"
	stdhttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay-server/internal/auth"
	"github.com/vovakirdan/chatrelay-server/internal/proto"
	"github.com/vovakirdan/chatrelay-server/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// API serves account provisioning and history endpoints.
type API struct {
	auth     *auth.Service
	messages store.MessageStore
	log      *zerolog.Logger
}

// ErrorResponse is the uniform error body for the REST API.
type ErrorResponse struct {
	Error string `json:"error"`
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse returns the opaque session token the WS relay expects.
type SessionResponse struct {
	Session string `json:"session"`
	Name    string `json:"name"`
	Admin   bool   `json:"admin"`
}

// HistoryResponse wraps the visible message backlog.
type HistoryResponse struct {
	Messages []proto.ChatEvent `json:"messages"`
}

// Register creates a new account.
func (a *API) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: "username and password required"})
		return
	}

	acct, err := a.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(stdhttp.StatusConflict, ErrorResponse{Error: "user already exists"})
		case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			a.log.Error().Err(err).Msg("register failed")
			c.JSON(stdhttp.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
		return
	}

	c.JSON(stdhttp.StatusCreated, sessionResponse(acct))
}

// Login validates credentials and rotates the session token.
func (a *API) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: "username and password required"})
		return
	}

	acct, err := a.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(stdhttp.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		a.log.Error().Err(err).Msg("login failed")
		c.JSON(stdhttp.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(stdhttp.StatusOK, sessionResponse(acct))
}

// Guest issues a throwaway account.
func (a *API) Guest(c *gin.Context) {
	acct, err := a.auth.Guest(c.Request.Context())
	if err != nil {
		a.log.Error().Err(err).Msg("guest creation failed")
		c.JSON(stdhttp.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(stdhttp.StatusCreated, sessionResponse(acct))
}

// History returns the most recent visible messages, oldest first. Hidden
// rows never appear.
func (a *API) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit < 1 {
		c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		return
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	msgs, err := a.messages.ListVisibleMessages(c.Request.Context(), limit)
	if err != nil {
		a.log.Error().Err(err).Msg("history query failed")
		c.JSON(stdhttp.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	resp := HistoryResponse{Messages: make([]proto.ChatEvent, 0, len(msgs))}
	for _, msg := range msgs {
		resp.Messages = append(resp.Messages, proto.ChatEvent{UsrFrom: msg.From, Message: msg.Body})
	}

	c.JSON(stdhttp.StatusOK, resp)
}

func sessionResponse(acct *store.Account) SessionResponse {
	return SessionResponse{Session: acct.Session, Name: acct.Name, Admin: acct.Admin}
}
