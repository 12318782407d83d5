package utils

import (
	"github.com/kataras/iris/v12"
)

type ListMeta struct {
	Total int `json:"total"`
}

func JSONList(ctx iris.Context, key string, data interface{}, total int) {
	ctx.JSON(iris.Map{
		"success": true,
		key:       data,
		"meta":    ListMeta{Total: total},
	})
}
