package handlers

import (
	"errors"
	"net/http"

	"notewise/services/device"
	"notewise/utils"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	Service device.DeviceService
}

func NewDeviceHandler(service device.DeviceService) *DeviceHandler {
	return &DeviceHandler{Service: service}
}

// RegisterDeviceHandler registers a client installation and its current FCM
// token. Clients call this on startup and whenever the token rotates.
func (h *DeviceHandler) RegisterDeviceHandler(c *gin.Context) {
	var body struct {
		DeviceID   string `json:"deviceId"`
		DeviceName string `json:"deviceName"`
		FCMToken   string `json:"fcmToken"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if body.DeviceID == "" {
		utils.JSONError(c, http.StatusBadRequest, "Bad Request", "Missing deviceId.")
		return
	}

	dev, err := h.Service.Register(c.Request.Context(), body.DeviceID, body.DeviceName, body.FCMToken, c.ClientIP())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to register device", err.Error())
		return
	}
	c.JSON(http.StatusOK, dev)
}

// DeregisterDeviceHandler removes the calling device's registration. The
// device ID comes from the session token, so a device can only remove itself.
func (h *DeviceHandler) DeregisterDeviceHandler(c *gin.Context) {
	deviceID := c.GetString("deviceID")
	if deviceID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "Missing device session.")
		return
	}

	if err := h.Service.Deregister(c.Request.Context(), deviceID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to deregister device", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device deregistered."})
}

// SetPINHandler configures the notebook lock PIN for a device.
func (h *DeviceHandler) SetPINHandler(c *gin.Context) {
	var body struct {
		DeviceID string `json:"deviceId"`
		PIN      string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.Service.SetPIN(c.Request.Context(), body.DeviceID, body.PIN); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to set PIN", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "PIN set."})
}

// UnlockHandler verifies the PIN and returns a session token for the
// protected note endpoints.
func (h *DeviceHandler) UnlockHandler(c *gin.Context) {
	var body struct {
		DeviceID string `json:"deviceId"`
		PIN      string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	token, err := h.Service.Unlock(c.Request.Context(), body.DeviceID, body.PIN)
	if err != nil {
		if errors.Is(err, device.ErrWrongPIN) {
			utils.JSONError(c, http.StatusUnauthorized, "Wrong PIN", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "Failed to unlock", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
