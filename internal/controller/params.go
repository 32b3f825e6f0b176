package controller

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func paramInt64(ctx *fiber.Ctx, name string) (int64, error) {
	v, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}

func currentUserId(ctx *fiber.Ctx) int64 {
	id, _ := ctx.Locals("user_id").(int64)
	return id
}
