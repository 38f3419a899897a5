package handlers

import (
	"net/http"

	"favr_backend/internal/middleware"
	"favr_backend/internal/services"
	"favr_backend/internal/services/dto"
	"favr_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type VerificationHandler struct {
	*BaseHandler
	verificationService *services.VerificationService
}

func NewVerificationHandler(base *BaseHandler, verificationService *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{
		BaseHandler:         base,
		verificationService: verificationService,
	}
}

func (h *VerificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Email confirmation arrives from a mail link, before the user has a
	// session.
	rg.POST("/verification/email/confirm", h.ConfirmEmail)

	verification := rg.Group("/verification")
	verification.Use(middleware.AuthMiddleware())
	{
		verification.GET("/status", h.Status)
		verification.POST("/phone/send", h.SendPhoneCode)
		verification.POST("/phone/verify", h.VerifyPhoneCode)
		verification.POST("/social", h.ConnectSocial)
		verification.POST("/mfa/enroll", h.EnrollMFA)
		verification.POST("/mfa/verify", h.VerifyMFA)
		verification.POST("/endorse/:user_id", h.Endorse)
	}
}

func (h *VerificationHandler) ConfirmEmail(c *gin.Context) {
	var req dto.ConfirmEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.verificationService.ConfirmEmail(c.Request.Context(), req.Token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email successfully verified",
	})
}

func (h *VerificationHandler) Status(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	status, err := h.verificationService.Status(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *VerificationHandler) SendPhoneCode(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	var req dto.PhoneSendRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.verificationService.SendPhoneCode(c.Request.Context(), req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent",
	})
}

func (h *VerificationHandler) VerifyPhoneCode(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PhoneVerifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.verificationService.VerifyPhoneCode(c.Request.Context(), userID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Phone number verified",
	})
}

func (h *VerificationHandler) ConnectSocial(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SocialConnectRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.verificationService.ConnectSocial(c.Request.Context(), userID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Social account connected",
	})
}

func (h *VerificationHandler) EnrollMFA(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	enrolled, err := h.verificationService.EnrollMFA(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrolled)
}

func (h *VerificationHandler) VerifyMFA(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.MFAVerifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.verificationService.VerifyMFA(c.Request.Context(), userID, req.Code); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Two-factor authentication enabled",
	})
}

func (h *VerificationHandler) Endorse(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	endorseeID := c.Param("user_id")
	if endorseeID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing required path parameter: user_id"))
		return
	}

	var req dto.EndorseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.verificationService.Endorse(c.Request.Context(), userID, endorseeID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Endorsement recorded",
	})
}
