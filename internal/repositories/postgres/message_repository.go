package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-realtime/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/** --------------------ENTITIES-------------------- */
type messageRecord struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)"`
	ChannelID  string       `gorm:"not null;index:idx_messages_channel_created,priority:1"`
	SenderID   string       `gorm:"not null"`
	SenderName string       `gorm:"default:''"`
	Content    string       `gorm:"not null"`
	Edited     bool         `gorm:"not null;default:false"`
	CreatedAt  time.Time    `gorm:"not null;index:idx_messages_channel_created,priority:2"`
	UpdatedAt  time.Time    `gorm:"not null"`
	Reads      []readRecord `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (messageRecord) TableName() string { return "messages" }

// readRecord is one (message, reader) pair; the composite key keeps readBy a set
type readRecord struct {
	MessageID string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"primaryKey"`
	ReadAt    time.Time `gorm:"not null"`
}

func (readRecord) TableName() string { return "message_reads" }

func (m *messageRecord) toModel() *models.Message {
	readBy := make([]string, 0, len(m.Reads))
	for _, r := range m.Reads {
		readBy = append(readBy, r.UserID)
	}
	return &models.Message{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		Edited:     m.Edited,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		ReadBy:     readBy,
	}
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Migrate creates the messages and message_reads tables
func (r *MessageRepository) Migrate() error {
	return r.db.AutoMigrate(&messageRecord{}, &readRecord{})
}

func (r *MessageRepository) FindByChannel(ctx context.Context, channelID string) ([]*models.Message, error) {
	var records []messageRecord
	err := r.db.WithContext(ctx).
		Preload("Reads", orderReads).
		Where("channel_id = ?", channelID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toModels(records), nil
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := messageRecord{
		ID:         uuid.NewString(),
		ChannelID:  msg.ChannelID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Content:    msg.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Omit("Reads").Create(&rec).Error; err != nil {
		return err
	}

	msg.ID = rec.ID
	msg.Edited = false
	msg.CreatedAt = now
	msg.UpdatedAt = now
	msg.ReadBy = []string{}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var rec messageRecord
	err := r.db.WithContext(ctx).Preload("Reads", orderReads).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *MessageRepository) UpdateContent(ctx context.Context, id, content string) (*models.Message, error) {
	res := r.db.WithContext(ctx).Model(&messageRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":    content,
			"edited":     true,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}
	return r.FindByID(ctx, id)
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&readRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&messageRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("message %s: %w", id, models.ErrNotFound)
		}
		return nil
	})
}

func (r *MessageRepository) FindLast(ctx context.Context, channelID string) (*models.Message, error) {
	var records []messageRecord
	err := r.db.WithContext(ctx).
		Preload("Reads", orderReads).
		Where("channel_id = ?", channelID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toModel(), nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, channelID, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&messageRecord{}).
		Where("channel_id = ?", channelID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads r WHERE r.message_id = messages.id AND r.user_id = ?)", userID).
		Count(&n).Error
	return n, err
}

// MarkRead inserts the reader for every message of the channel in a single
// INSERT ... SELECT; existing pairs are skipped by the primary key
func (r *MessageRepository) MarkRead(ctx context.Context, channelID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO message_reads (message_id, user_id, read_at)
		 SELECT id, ?, ? FROM messages WHERE channel_id = ?
		 ON CONFLICT (message_id, user_id) DO NOTHING`,
		userID, time.Now().UTC(), channelID,
	)
	return res.RowsAffected, res.Error
}

func (r *MessageRepository) Search(ctx context.Context, channelID, query string, limit int) ([]*models.Message, error) {
	var records []messageRecord
	err := r.db.WithContext(ctx).
		Preload("Reads", orderReads).
		Where("channel_id = ?", channelID).
		Where(`content ILIKE ? ESCAPE '\'`, "%"+escapeLike(query)+"%").
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "created_at"}, Desc: true},
			{Column: clause.Column{Name: "id"}, Desc: true},
		}}).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toModels(records), nil
}

func orderReads(db *gorm.DB) *gorm.DB {
	return db.Order("read_at ASC, user_id ASC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toModels(records []messageRecord) []*models.Message {
	out := make([]*models.Message, 0, len(records))
	for i := range records {
		out = append(out, records[i].toModel())
	}
	return out
}
