package handlers

import (
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/gin-gonic/gin"
)

func CreateInventoryItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInventoryItem
		if !bindJSON(c, &input) {
			return
		}
		item, err := models.CreateInventoryItem(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func UpdateInventoryItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewInventoryItem
		if !bindJSON(c, &input) {
			return
		}
		item, err := models.UpdateInventoryItem(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func DeleteInventoryItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		item, err := models.DeleteInventoryItem(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func GetInventoryItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := models.GetInventoryItems(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		total, err := models.TotalInventoryValue(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "total_value": total})
	}
}

func CreateBudgetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBudget
		if !bindJSON(c, &input) {
			return
		}
		budget, err := models.CreateBudget(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, budget)
	}
}

func UpdateBudgetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewBudget
		if !bindJSON(c, &input) {
			return
		}
		budget, err := models.UpdateBudget(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, budget)
	}
}

func DeleteBudgetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		budget, err := models.DeleteBudget(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, budget)
	}
}

func GetBudgetReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year := utils.DereferencePtr(queryInt(c, "year"), time.Now().Year())
		report, err := models.GetBudgetReport(c.Request.Context(), year)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
