package handlers

import (
	"io"
	"net/http"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMember
		if !bindJSON(c, &input) {
			return
		}
		member, err := models.CreateMember(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, member)
	}
}

func UpdateMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewMember
		if !bindJSON(c, &input) {
			return
		}
		member, err := models.UpdateMember(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, member)
	}
}

func DeleteMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		member, err := models.DeleteMember(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, member)
	}
}

func GetMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		member, err := models.GetMember(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, member)
	}
}

func GetMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var segment *models.MemberSegment
		if raw := c.Query("segment"); raw != "" {
			parsed, err := models.ParseMemberSegment(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			segment = &parsed
		}
		members, err := models.GetMembers(c.Request.Context(), queryString(c, "name"), segment, queryInt(c, "tag_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, members)
	}
}

// ExportMembersCSVHandler streams the member list as a CSV download.
func ExportMembersCSVHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		csv, err := models.ExportMembersCSV(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=leden.csv")
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
	}
}

func ExportMembersXlsxHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		buf, err := models.ExportMembersXlsx(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=leden.xlsx")
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

// ImportMembersHandler accepts the spreadsheet either as a multipart file
// upload or as the raw request body.
func ImportMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var data []byte

		if file, err := c.FormFile("file"); err == nil {
			f, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer f.Close()
			data, err = io.ReadAll(f)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		} else {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil || len(body) == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "no import file"})
				return
			}
			data = body
		}

		result, err := models.ImportMembersCSV(c.Request.Context(), string(data))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
