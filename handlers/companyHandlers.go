package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCompany
		if !bindJSON(c, &input) {
			return
		}
		company, err := models.CreateCompany(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, company)
	}
}

func UpdateCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewCompany
		if !bindJSON(c, &input) {
			return
		}
		company, err := models.UpdateCompany(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, company)
	}
}

func DeleteCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		company, err := models.DeleteCompany(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, company)
	}
}

func GetCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		company, err := models.GetCompany(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, company)
	}
}

type companyLogoInput struct {
	ImageData string `json:"image_data" binding:"required"`
}

func SetCompanyLogoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input companyLogoInput
		if !bindJSON(c, &input) {
			return
		}
		company, err := models.SetCompanyLogo(c.Request.Context(), id, input.ImageData)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, company)
	}
}

func GetCompaniesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		companies, err := models.GetCompanies(c.Request.Context(), queryString(c, "name"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, companies)
	}
}
