package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTag
		if !bindJSON(c, &input) {
			return
		}
		tag, err := models.CreateTag(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, tag)
	}
}

func UpdateTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewTag
		if !bindJSON(c, &input) {
			return
		}
		tag, err := models.UpdateTag(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tag)
	}
}

func DeleteTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		tag, err := models.DeleteTag(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tag)
	}
}

func GetTagsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, err := models.GetTags(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tags)
	}
}

type tagAssignmentInput struct {
	MemberId int `json:"member_id" binding:"required"`
	TagId    int `json:"tag_id" binding:"required"`
}

func AttachTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input tagAssignmentInput
		if !bindJSON(c, &input) {
			return
		}
		if err := models.AttachTagToMember(c.Request.Context(), input.MemberId, input.TagId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "attached"})
	}
}

func DetachTagHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input tagAssignmentInput
		if !bindJSON(c, &input) {
			return
		}
		if err := models.DetachTagFromMember(c.Request.Context(), input.MemberId, input.TagId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "detached"})
	}
}
