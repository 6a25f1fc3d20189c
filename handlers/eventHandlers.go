package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewEvent
		if !bindJSON(c, &input) {
			return
		}
		event, err := models.CreateEvent(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, event)
	}
}

func UpdateEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewEvent
		if !bindJSON(c, &input) {
			return
		}
		event, err := models.UpdateEvent(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func DeleteEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		event, err := models.DeleteEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func GetEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		event, err := models.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func GetEventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		upcomingOnly := c.Query("upcoming") == "true"
		events, err := models.GetEvents(c.Request.Context(), upcomingOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func RegisterForEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewEventRegistration
		if !bindJSON(c, &input) {
			return
		}
		registration, err := models.RegisterForEvent(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, registration)
	}
}

func CancelEventRegistrationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		registration, err := models.CancelEventRegistration(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, registration)
	}
}
