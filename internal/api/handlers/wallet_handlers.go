// Package handlers contains the gin HTTP handlers exposing wallet
// operations. Handlers only translate requests and errors; every
// invariant lives in the wallet service.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
	"github.com/vaultex/vaultex_service/internal/domain/services/wallet"
	"github.com/vaultex/vaultex_service/pkg/logger"
)

// WalletHandlers handles wallet-related operations
type WalletHandlers struct {
	walletService *wallet.Service
	logger        *logger.Logger
}

// NewWalletHandlers creates a new WalletHandlers instance
func NewWalletHandlers(walletService *wallet.Service, logger *logger.Logger) *WalletHandlers {
	return &WalletHandlers{
		walletService: walletService,
		logger:        logger,
	}
}

// RequestWithdrawalRequest is the body of POST /wallet/withdrawal/request
type RequestWithdrawalRequest struct {
	Address  string          `json:"address" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required"`
	Network  string          `json:"network"`
	OTPCode  string          `json:"otp_code"`
}

// RequestWithdrawal handles POST /wallet/withdrawal/request: it starts
// the email confirmation handshake for a withdrawal.
func (h *WalletHandlers) RequestWithdrawal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondBadRequest(c, "INVALID_USER_ID", "Invalid or missing user ID")
		return
	}

	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	request, err := h.walletService.SendRequestWithdrawalEmail(c.Request.Context(), userID, req.Address, req.Amount, req.Currency, wallet.RequestOptions{
		Network: req.Network,
		OTPCode: req.OTPCode,
		IP:      c.ClientIP(),
		Domain:  requestDomain(c),
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Withdrawal confirmation email sent",
		"transaction_id": request.TransactionID,
		"fee":            request.Fee,
		"fee_coin":       request.FeeCoin,
	})
}

// ConfirmWithdrawalRequest is the body of POST /wallet/withdrawal/confirm
type ConfirmWithdrawalRequest struct {
	Token string `json:"token" binding:"required"`
}

// ConfirmWithdrawal handles POST /wallet/withdrawal/confirm: it consumes
// a confirmation token and executes the withdrawal it carries.
func (h *WalletHandlers) ConfirmWithdrawal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondBadRequest(c, "INVALID_USER_ID", "Invalid or missing user ID")
		return
	}

	var req ConfirmWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	tx, err := h.walletService.PerformWithdrawal(c.Request.Context(), userID, req.Token)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// DirectWithdrawalRequest is the body of POST /wallet/withdrawal
type DirectWithdrawalRequest struct {
	Address  string          `json:"address" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required"`
	Network  string          `json:"network"`
}

// DirectWithdrawal handles POST /wallet/withdrawal: full validation and
// execution without the email handshake, for trusted callers.
func (h *WalletHandlers) DirectWithdrawal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondBadRequest(c, "INVALID_USER_ID", "Invalid or missing user ID")
		return
	}

	var req DirectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	tx, err := h.walletService.PerformDirectWithdrawal(c.Request.Context(), userID, req.Address, req.Amount, req.Currency, req.Network)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// GetBalance handles GET /wallet/balance
func (h *WalletHandlers) GetBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondBadRequest(c, "INVALID_USER_ID", "Invalid or missing user ID")
		return
	}

	balance, err := h.walletService.GetUserBalanceByKitID(c.Request.Context(), userID)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// CancelWithdrawal handles DELETE /wallet/withdrawal/:id
func (h *WalletHandlers) CancelWithdrawal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondBadRequest(c, "INVALID_USER_ID", "Invalid or missing user ID")
		return
	}

	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "INVALID_WITHDRAWAL_ID", "Invalid withdrawal ID")
		return
	}

	tx, err := h.walletService.CancelUserWithdrawalByKitID(c.Request.Context(), userID, withdrawalID)
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// TransferRequest is the body of POST /admin/transfer
type TransferRequest struct {
	SenderID    int64           `json:"sender_id" binding:"required"`
	ReceiverID  int64           `json:"receiver_id" binding:"required"`
	Currency    string          `json:"currency" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	Email       bool            `json:"email"`
}

// Transfer handles POST /admin/transfer
func (h *WalletHandlers) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	tx, err := h.walletService.TransferAssetByKitIDs(c.Request.Context(), req.SenderID, req.ReceiverID, req.Currency, req.Amount, entities.TransferOptions{
		Description: req.Description,
		Email:       req.Email,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// MintBurnRequest is the body of POST /admin/mint and /admin/burn
type MintBurnRequest struct {
	UserID      int64           `json:"user_id" binding:"required"`
	Currency    string          `json:"currency" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Email       bool            `json:"email"`
}

// Mint handles POST /admin/mint
func (h *WalletHandlers) Mint(c *gin.Context) {
	var req MintBurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	tx, err := h.walletService.MintAssetByKitID(c.Request.Context(), req.UserID, req.Currency, req.Amount, entities.MintBurnOptions{
		Description: req.Description,
		Status:      req.Status,
		Email:       req.Email,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// Burn handles POST /admin/burn
func (h *WalletHandlers) Burn(c *gin.Context) {
	var req MintBurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	tx, err := h.walletService.BurnAssetByKitID(c.Request.Context(), req.UserID, req.Currency, req.Amount, entities.MintBurnOptions{
		Description: req.Description,
		Status:      req.Status,
		Email:       req.Email,
	})
	if err != nil {
		h.respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// respondDomainError maps domain sentinels to HTTP statuses
func (h *WalletHandlers) respondDomainError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainerrors.ErrInvalidCoin),
		errors.Is(err, domainerrors.ErrInvalidAmount),
		errors.Is(err, domainerrors.ErrInvalidNetwork),
		errors.Is(err, domainerrors.ErrNetworkRequired),
		errors.Is(err, domainerrors.ErrInvalidAddress),
		errors.Is(err, domainerrors.ErrWithdrawalDisabled),
		errors.Is(err, domainerrors.ErrDepositDisabled),
		errors.Is(err, domainerrors.ErrInsufficientBalance),
		errors.Is(err, domainerrors.ErrLimitExceeded),
		errors.Is(err, domainerrors.ErrInvalidWithdrawalToken),
		errors.Is(err, domainerrors.ErrExpiredWithdrawalToken):
		status = http.StatusBadRequest
	case errors.Is(err, domainerrors.ErrInvalidOTPCode),
		errors.Is(err, domainerrors.ErrVerificationRequired):
		status = http.StatusForbidden
	case errors.Is(err, domainerrors.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainerrors.ErrUserNotRegisteredOnNetwork):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Wallet operation failed", "error", err)
		c.JSON(status, gin.H{"code": "INTERNAL_ERROR", "message": "Internal server error"})
		return
	}

	c.JSON(status, gin.H{
		"code":    domainerrors.GetErrorCode(err),
		"message": err.Error(),
		"details": domainerrors.GetErrorDetails(err),
	})
}

func respondBadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": code, "message": message})
}

// getUserID reads the authenticated user id set by the auth middleware,
// falling back to the X-User-Id header for internal callers
func getUserID(c *gin.Context) (int64, error) {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(int64); ok {
			return id, nil
		}
	}
	return strconv.ParseInt(c.GetHeader("X-User-Id"), 10, 64)
}

func requestDomain(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" {
		return origin
	}
	return ""
}
