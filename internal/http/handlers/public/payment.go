package public

import (
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// GatewayCallback 支付网关回调，兼容 JSON 与表单提交
func (h *Handler) GatewayCallback(c *gin.Context) {
	var input service.PaymentCallbackInput
	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&input)
	} else {
		err = c.ShouldBind(&input)
	}
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.payment_callback_invalid", err)
		return
	}

	result, err := h.PaymentService.HandleCallback(c.Request.Context(), input)
	if err != nil {
		requestLog(c).Warnw("payment_callback_failed", "gateway_order_id", input.OrderID, "error", err)
		respondMappedError(c, err, handlershared.PaymentErrorRules, "error.payment_fetch_failed")
		return
	}
	requestLog(c).Infow("payment_callback_handled",
		"gateway_order_id", input.OrderID,
		"result", result.Result,
	)
	response.Success(c, result)
}
