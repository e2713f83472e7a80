package handlers

import (
	"strconv"

	"github.com/0xEcho/cloudfile/internal/services/explorer"
	"github.com/gin-gonic/gin"
)

// parseListParams 提取分页和排序参数，非法值交给服务层规整
func parseListParams(c *gin.Context) explorer.ListParams {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return explorer.ListParams{
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
}

// optionalIDQuery 读取可空的 ID 查询参数，缺省或空串表示根目录
func optionalIDQuery(c *gin.Context, name string) *string {
	value := c.Query(name)
	if value == "" {
		return nil
	}
	return &value
}
