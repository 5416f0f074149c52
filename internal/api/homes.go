package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mealplanner/internal/store"
)

// The handlers in this file sit behind RequireAuth.

// GetHomes lists the caller's homes and the one currently selected.
func (h *Handler) GetHomes(c *gin.Context) {
	id, _ := identity(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	homes, err := h.Store.GetUserHouseholds(ctx, id.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	var current string
	user, err := h.Store.GetUser(ctx, id.ID)
	switch {
	case err == nil:
		current = user.CurrentHomeID
	case !errors.Is(err, store.ErrNotFound):
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"homes": homes, "currentHomeId": current})
}

type createHomeRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateHome creates a home owned by the caller.
func (h *Handler) CreateHome(c *gin.Context) {
	var req createHomeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "Home name is required")
		return
	}
	id, _ := identity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	home, err := h.Store.CreateHousehold(ctx, req.Name, id.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"home": home})
}

type homeRefRequest struct {
	HomeID string `json:"homeId" binding:"required"`
}

// SelectHome sets the caller's current home.
func (h *Handler) SelectHome(c *gin.Context) {
	var req homeRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Home ID is required")
		return
	}
	id, _ := identity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	user, err := h.Store.SetCurrentHome(ctx, id.ID, req.HomeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// InviteToHome invites a registered user by email. Expected refusals such
// as an unknown email come back as 400 with the reason.
func (h *Handler) InviteToHome(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "A valid email is required")
		return
	}
	id, _ := identity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	result, err := h.Store.SendHomeInvite(ctx, c.Param("homeId"), id.ID, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	if !result.Success {
		badRequest(c, result.Message)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Message})
}

// GetInvites lists homes the caller has been invited to.
func (h *Handler) GetInvites(c *gin.Context) {
	id, _ := identity(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	invites, err := h.Store.GetUserInvites(ctx, id.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

// AcceptInvite joins the caller to an inviting home.
func (h *Handler) AcceptInvite(c *gin.Context) {
	var req homeRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Home ID is required")
		return
	}
	id, _ := identity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	home, err := h.Store.AcceptHomeInvite(ctx, id.ID, req.HomeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"home": home})
}

// DeclineInvite discards a pending invite.
func (h *Handler) DeclineInvite(c *gin.Context) {
	var req homeRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Home ID is required")
		return
	}
	id, _ := identity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.Store.DeclineHomeInvite(ctx, id.ID, req.HomeID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
