package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/afekalocker/ambient/api/model"
)

// GetPageParams reads the size/page query parameters with the service-wide
// defaults.
func GetPageParams(c *gin.Context) (model.Page, error) {
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		return model.Page{}, err
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		return model.Page{}, err
	}
	return model.Page{Size: size, Page: page}, nil
}
