package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/avergnaud/atelier/internal/model"
)

// ErrNotParticipant is returned when a member posts into a private thread
// they are not part of.
var ErrNotParticipant = errors.New("member is not a participant of this thread")

// CommunityStore covers members, forums, private messages and galleries.
type CommunityStore struct {
	db *gorm.DB
}

func NewCommunityStore(db *gorm.DB) *CommunityStore {
	return &CommunityStore{db: db}
}

func (s *CommunityStore) CreateMember(ctx context.Context, m *model.Member) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *CommunityStore) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	var m model.Member
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, fmt.Errorf("member %d: %w", id, err)
	}
	return &m, nil
}

func (s *CommunityStore) GetMemberByUsername(ctx context.Context, username string) (*model.Member, error) {
	var m model.Member
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&m).Error
	if err != nil {
		return nil, fmt.Errorf("member %q: %w", username, err)
	}
	return &m, nil
}

func (s *CommunityStore) ListMembers(ctx context.Context, limit, offset int) ([]*model.Member, error) {
	var out []*model.Member
	err := s.db.WithContext(ctx).
		Order("username ASC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (s *CommunityStore) UpdateMember(ctx context.Context, m *model.Member) error {
	return s.db.WithContext(ctx).Save(m).Error
}

func (s *CommunityStore) TouchMemberVisit(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Model(&model.Member{}).
		Where("id = ?", id).
		Update("last_visit", time.Now().UTC()).Error
}

func (s *CommunityStore) ListForums(ctx context.Context) ([]*model.Forum, error) {
	var out []*model.Forum
	err := s.db.WithContext(ctx).Order("position ASC").Find(&out).Error
	return out, err
}

func (s *CommunityStore) CreateForum(ctx context.Context, f *model.Forum) error {
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *CommunityStore) GetForum(ctx context.Context, id int64) (*model.Forum, error) {
	var f model.Forum
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, fmt.Errorf("forum %d: %w", id, err)
	}
	return &f, nil
}

// TopicsOfForum returns topics most recently active first, sticky ones on top.
func (s *CommunityStore) TopicsOfForum(ctx context.Context, forumID int64, limit, offset int) ([]*model.Topic, error) {
	var out []*model.Topic
	err := s.db.WithContext(ctx).
		Where("forum_id = ?", forumID).
		Order("is_sticky DESC, last_post_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (s *CommunityStore) GetTopic(ctx context.Context, id int64) (*model.Topic, error) {
	var t model.Topic
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, fmt.Errorf("topic %d: %w", id, err)
	}
	return &t, nil
}

func (s *CommunityStore) UpdateTopic(ctx context.Context, t *model.Topic) error {
	return s.db.WithContext(ctx).Save(t).Error
}

// CreateTopic inserts the topic together with its opening post.
func (s *CommunityStore) CreateTopic(ctx context.Context, t *model.Topic, first *model.Post) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.LastPostAt = now
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		first.TopicID = t.ID
		first.CreatedAt = now
		first.UpdatedAt = now
		return tx.Create(first).Error
	})
}

func (s *CommunityStore) CreatePost(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Model(&model.Topic{}).
			Where("id = ?", p.TopicID).
			Update("last_post_at", now).Error
	})
}

func (s *CommunityStore) UpdatePost(ctx context.Context, p *model.Post) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	p.EditedAt = &now
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *CommunityStore) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	return &p, nil
}

func (s *CommunityStore) PostsOfTopic(ctx context.Context, topicID int64, limit, offset int) ([]*model.Post, error) {
	var out []*model.Post
	err := s.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// CreateThread opens a private thread with its participants and first message.
// The author must be listed among the participant member IDs.
func (s *CommunityStore) CreateThread(ctx context.Context, t *model.Thread, memberIDs []int64, first *model.Message) error {
	found := false
	for _, id := range memberIDs {
		if id == first.AuthorID {
			found = true
			break
		}
	}
	if !found {
		return ErrNotParticipant
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.LastMessageAt = now
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(t).Error; err != nil {
			return err
		}
		for _, id := range memberIDs {
			p := model.ThreadParticipant{ThreadID: t.ID, MemberID: id}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		first.ThreadID = t.ID
		first.CreatedAt = now
		return tx.Create(first).Error
	})
}

func (s *CommunityStore) GetThread(ctx context.Context, id int64) (*model.Thread, error) {
	var t model.Thread
	err := s.db.WithContext(ctx).Preload("Participants").First(&t, id).Error
	if err != nil {
		return nil, fmt.Errorf("thread %d: %w", id, err)
	}
	return &t, nil
}

func (s *CommunityStore) ThreadsOfMember(ctx context.Context, memberID int64) ([]*model.Thread, error) {
	var out []*model.Thread
	err := s.db.WithContext(ctx).
		Joins("JOIN pm_participant ON pm_participant.thread_id = pm_thread.id").
		Where("pm_participant.member_id = ?", memberID).
		Order("pm_thread.last_message_at DESC").
		Find(&out).Error
	return out, err
}

// CreateMessage appends to a thread; the author must already participate.
func (s *CommunityStore) CreateMessage(ctx context.Context, m *model.Message) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		err := tx.Model(&model.ThreadParticipant{}).
			Where("thread_id = ? AND member_id = ?", m.ThreadID, m.AuthorID).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotParticipant
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&model.Thread{}).
			Where("id = ?", m.ThreadID).
			Update("last_message_at", now).Error
	})
}

func (s *CommunityStore) MessagesOfThread(ctx context.Context, threadID int64) ([]*model.Message, error) {
	var out []*model.Message
	err := s.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (s *CommunityStore) CreateGallery(ctx context.Context, g *model.Gallery) error {
	g.CreatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Create(g).Error
}

func (s *CommunityStore) GetGallery(ctx context.Context, id int64) (*model.Gallery, error) {
	var g model.Gallery
	if err := s.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, fmt.Errorf("gallery %d: %w", id, err)
	}
	return &g, nil
}

func (s *CommunityStore) GalleriesOfMember(ctx context.Context, ownerID int64) ([]*model.Gallery, error) {
	var out []*model.Gallery
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *CommunityStore) DeleteGallery(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_id = ?", id).Delete(&model.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Gallery{}, id).Error
	})
}

func (s *CommunityStore) CreateImage(ctx context.Context, img *model.Image) error {
	now := time.Now().UTC()
	img.CreatedAt = now
	img.UpdatedAt = now
	return s.db.WithContext(ctx).Create(img).Error
}

func (s *CommunityStore) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	var img model.Image
	if err := s.db.WithContext(ctx).First(&img, id).Error; err != nil {
		return nil, fmt.Errorf("image %d: %w", id, err)
	}
	return &img, nil
}

func (s *CommunityStore) ImagesOfGallery(ctx context.Context, galleryID int64) ([]*model.Image, error) {
	var out []*model.Image
	err := s.db.WithContext(ctx).
		Where("gallery_id = ?", galleryID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (s *CommunityStore) DeleteImage(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&model.Image{}, id).Error
}
