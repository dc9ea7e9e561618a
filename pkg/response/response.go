package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, data interface{}, msg string) {
	JSON(c, http.StatusOK, data, msg)
}

func Created(c *gin.Context, data interface{}, msg string) {
	JSON(c, http.StatusCreated, data, msg)
}

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, Body{
		Success: false,
		Message: msg,
	})
}

// ServerError keeps the user-facing message generic and carries the cause separately.
func ServerError(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusInternalServerError, Body{
		Success: false,
		Message: msg,
		Error:   err.Error(),
	})
}

func JSON(c *gin.Context, status int, data interface{}, msg string) {
	c.JSON(status, Body{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
