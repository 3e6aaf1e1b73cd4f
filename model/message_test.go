package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMessageTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_message_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&Message{})
	assert.NoError(t, err)

	return db
}

func TestMessageModel_Create(t *testing.T) {
	db := setupMessageTestDB(t)

	message := Message{
		SenderID:   2,
		ReceiverID: 3,
		Content:    "Jangan lupa obat malam ini",
	}

	err := db.Create(&message).Error
	assert.NoError(t, err)
	assert.NotZero(t, message.ID)
	assert.False(t, message.Read)
}

func TestMessageModel_MarkRead(t *testing.T) {
	db := setupMessageTestDB(t)

	message := Message{SenderID: 2, ReceiverID: 3, Content: "Halo"}
	db.Create(&message)

	err := db.Model(&message).Update("read", true).Error
	assert.NoError(t, err)

	var found Message
	db.First(&found, message.ID)
	assert.True(t, found.Read)
}

func TestMessageModel_ConversationForUser(t *testing.T) {
	db := setupMessageTestDB(t)

	db.Create(&Message{SenderID: 2, ReceiverID: 3, Content: "Dari perawat"})
	db.Create(&Message{SenderID: 3, ReceiverID: 2, Content: "Balasan pasien"})
	db.Create(&Message{SenderID: 4, ReceiverID: 5, Content: "Percakapan lain"})

	var messages []Message
	err := db.Where("sender_id = ? OR receiver_id = ?", 3, 3).Order("id ASC").Find(&messages).Error
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, "Dari perawat", messages[0].Content)
	assert.Equal(t, "Balasan pasien", messages[1].Content)
}
