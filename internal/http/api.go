package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finapi/internal/auth"
	"finapi/internal/domain"
	"finapi/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	statements service.StatementService
	archives   service.ArchiveService
	tokens     auth.Issuer
	log        logrus.FieldLogger
}

func NewHandler(users service.UserService, statements service.StatementService, archives service.ArchiveService, tokens auth.Issuer, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		users:      users,
		statements: statements,
		archives:   archives,
		tokens:     tokens,
		log:        log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.log))

	router.GET("/api/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/users", h.createUser)
		v1.POST("/sessions", h.authenticate)

		authed := v1.Group("")
		authed.Use(authMiddleware(h.tokens))
		authed.GET("/profile", h.showProfile)

		statements := authed.Group("/statements")
		statements.GET("/balance", h.getBalance)
		statements.POST("/deposit", h.createStatement(domain.OperationDeposit))
		statements.POST("/withdraw", h.createStatement(domain.OperationWithdraw))
		statements.POST("/transfers/:receiver_id", h.createStatement(domain.OperationTransfer))
		statements.GET("/:statement_id", h.getStatementOperation)

		authed.POST("/archives", h.createArchive)
		authed.GET("/archives", h.listArchives)
	}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authenticateRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type statementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		Token: session.Token,
		User:  userToResponse(session.User),
	})
}

func (h *Handler) showProfile(c *gin.Context) {
	user, err := h.users.ShowProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) getBalance(c *gin.Context) {
	balance, err := h.statements.GetBalance(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceToResponse(balance))
}

func (h *Handler) createStatement(op domain.OperationType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		statement, err := h.statements.CreateStatement(c.Request.Context(), service.CreateStatementInput{
			UserID:      currentUserID(c),
			Type:        op,
			Amount:      req.Amount,
			Description: req.Description,
			ReceiverID:  c.Param("receiver_id"),
		})
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, statementToResponse(*statement))
	}
}

func (h *Handler) getStatementOperation(c *gin.Context) {
	statement, err := h.statements.GetStatementOperation(c.Request.Context(), currentUserID(c), c.Param("statement_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statementToResponse(*statement))
}

func (h *Handler) createArchive(c *gin.Context) {
	archive, err := h.archives.Archive(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, archiveToResponse(*archive))
}

func (h *Handler) listArchives(c *gin.Context) {
	archives, err := h.archives.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]ArchiveResponse, len(archives))
	for i := range archives {
		resp[i] = archiveToResponse(archives[i])
	}
	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrStatementNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidUserInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateUser):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIncorrectEmailOrPassword):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type StatementResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReceiverID  string          `json:"receiver_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type BalanceResponse struct {
	Balance    decimal.Decimal     `json:"balance"`
	Statements []StatementResponse `json:"statements"`
}

type ArchiveResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
	URL          string  `json:"url"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func statementToResponse(st domain.Statement) StatementResponse {
	return StatementResponse{
		ID:          st.ID,
		UserID:      st.UserID,
		Type:        string(st.Type),
		Amount:      st.Amount,
		Description: st.Description,
		ReceiverID:  st.ReceiverID,
		CreatedAt:   st.CreatedAt.Format(time.RFC3339),
	}
}

func balanceToResponse(balance *domain.Balance) BalanceResponse {
	resp := BalanceResponse{
		Balance:    balance.Amount,
		Statements: make([]StatementResponse, len(balance.Statements)),
	}
	for i := range balance.Statements {
		resp.Statements[i] = statementToResponse(balance.Statements[i])
	}
	return resp
}

func archiveToResponse(archive domain.Archive) ArchiveResponse {
	resp := ArchiveResponse{
		Key:  archive.Key,
		Size: archive.Size,
		URL:  archive.URL,
	}
	if archive.LastModified != nil && !archive.LastModified.IsZero() {
		v := archive.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
