package endpoint

import (
	"fmt"

	"github.com/Rullyopus4/IMO-MANTAP/middleware"
	"github.com/Rullyopus4/IMO-MANTAP/model"
	"github.com/Rullyopus4/IMO-MANTAP/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func decorateMessages(db *gorm.DB, messages []model.Message) []model.MessageResponse {
	responses := make([]model.MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, model.MessageResponse{
			Message:      message,
			SenderName:   util.GetUserName(db, message.SenderID),
			ReceiverName: util.GetUserName(db, message.ReceiverID),
		})
	}
	return responses
}

// ListMessages godoc
// @Summary      List the caller's messages
// @Description  Get every message the authenticated user sent or received, oldest first
// @Tags         Message
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=object} "Messages retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /message [get]
func ListMessages(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("user id not found in context"),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var messages []model.Message
	err := db.Where("sender_id = ? OR receiver_id = ?", userID, userID).Order("id ASC").Find(&messages).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve messages",
			Err: err,
		})
		return
	}

	responses := decorateMessages(db, messages)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Messages retrieved",
		Data: map[string]interface{}{"total": len(responses), "messages": responses},
	})
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Send a message from the authenticated user to another user
// @Tags         Message
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body model.SendMessageRequest true "Message content"
// @Success      200 {object} util.APIResponse{data=model.Message} "Message sent"
// @Failure      400 {object} util.APIResponse "Invalid request or receiver not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /message [post]
func SendMessage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("user id not found in context"),
		})
		return
	}

	var req model.SendMessageRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}

	if req.ReceiverID == 0 || req.Content == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Receiver and content are required",
			Err: fmt.Errorf("invalid payload"),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var receiver model.User
	if err := db.First(&receiver, req.ReceiverID).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Receiver not found",
			Err: err,
		})
		return
	}

	message := model.Message{
		SenderID:   userID,
		ReceiverID: receiver.ID,
		Content:    req.Content,
	}
	if err := db.Create(&message).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to send message",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Message sent",
		Data: message,
	})
}

// MarkMessageRead godoc
// @Summary      Mark a message as read
// @Description  Mark a received message as read; only the receiver may do this
// @Tags         Message
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Message ID"
// @Success      200 {object} util.APIResponse{data=model.Message} "Message marked read"
// @Failure      400 {object} util.APIResponse "Message not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      403 {object} util.APIResponse "Caller is not the receiver"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /message/{id}/read [patch]
func MarkMessageRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("user id not found in context"),
		})
		return
	}

	messageID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var message model.Message
	if err := db.First(&message, messageID).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Message not found",
			Err: err,
		})
		return
	}

	if message.ReceiverID != userID {
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "Only the receiver can mark a message as read",
			Err: fmt.Errorf("message belongs to another receiver"),
		})
		return
	}

	message.Read = true
	if err := db.Save(&message).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to update message",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Message marked read",
		Data: message,
	})
}
