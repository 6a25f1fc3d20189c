package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateIncomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewIncome
		if !bindJSON(c, &input) {
			return
		}
		income, err := models.CreateIncome(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, income)
	}
}

func UpdateIncomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewIncome
		if !bindJSON(c, &input) {
			return
		}
		income, err := models.UpdateIncome(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, income)
	}
}

func DeleteIncomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		income, err := models.DeleteIncome(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, income)
	}
}

func GetIncomesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		incomes, err := models.GetIncomes(c.Request.Context(),
			queryDate(c, "from"), queryDate(c, "until"), queryString(c, "category"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, incomes)
	}
}

func CreateExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewExpense
		if !bindJSON(c, &input) {
			return
		}
		expense, err := models.CreateExpense(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, expense)
	}
}

func UpdateExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewExpense
		if !bindJSON(c, &input) {
			return
		}
		expense, err := models.UpdateExpense(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}

func DeleteExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		expense, err := models.DeleteExpense(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}

func GetExpensesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		expenses, err := models.GetExpenses(c.Request.Context(),
			queryDate(c, "from"), queryDate(c, "until"), queryString(c, "category"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, expenses)
	}
}

// GetDocumentURLHandler returns a short-lived signed download link for a
// stored receipt.
func GetDocumentURLHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		url, err := models.GetDocumentURL(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}
