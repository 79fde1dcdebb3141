package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parlor-chat/parlor/internal/events"
	"github.com/parlor-chat/parlor/internal/metrics"
	"github.com/parlor-chat/parlor/internal/models"
	"github.com/parlor-chat/parlor/internal/repository"
	"github.com/parlor-chat/parlor/internal/utils"
)

const (
	defaultMessageLimit = 50
	maxReactionLen      = 64
)

// ChatService owns channels, messages, reactions and nickname overrides.
// Every operation resolves the acting user first; a missing or banned
// actor is rejected before anything is written.
type ChatService struct {
	users    repository.UserRepository
	channels repository.ChannelRepository
	messages repository.MessageRepository
	pub      events.Publisher
	logger   *zap.SugaredLogger
}

func NewChatService(
	users repository.UserRepository,
	channels repository.ChannelRepository,
	messages repository.MessageRepository,
	pub events.Publisher,
	logger *zap.SugaredLogger,
) *ChatService {
	return &ChatService{
		users:    users,
		channels: channels,
		messages: messages,
		pub:      pub,
		logger:   logger,
	}
}

func (s *ChatService) actor(ctx context.Context, actorID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find actor: %w", ErrInternal)
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}
	return user, nil
}

func (s *ChatService) channel(ctx context.Context, channelID string) (*models.Channel, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("find channel: %w", ErrInternal)
	}
	return ch, nil
}

// canRead reports whether the actor may see a channel's contents.
func canRead(ch *models.Channel, actor *models.User) bool {
	if ch.HasParticipant(actor.ID) || actor.IsAdmin {
		return true
	}
	return ch.Kind == models.ChannelGroup && !ch.IsPrivate
}

// canManage reports whether the actor may change channel settings
// (participants, nicknames).
func canManage(ch *models.Channel, actor *models.User) bool {
	return ch.CreatorID == actor.ID || actor.IsAdmin
}

// CreateChannel creates a group or direct channel. The caller is always a
// participant; the kind is tagged at creation from the final participant
// count and never re-derived. Group names are unique case-insensitively;
// a direct channel for an existing pair is reused, not duplicated.
func (s *ChatService) CreateChannel(ctx context.Context, actorID, name string, participantIDs []string, isPrivate bool) (*models.Channel, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	participants := dedupe(append(participantIDs, actor.ID))

	kind := models.ChannelGroup
	directKey := ""
	if len(participants) == 2 {
		kind = models.ChannelDirect
		directKey = models.DirectKey(participants[0], participants[1])
		if existing, err := s.channels.FindDirect(ctx, directKey); err == nil {
			return existing, nil
		}
	} else {
		if _, err := s.channels.FindByName(ctx, name); err == nil {
			return nil, ErrChannelExists
		}
	}

	ch := &models.Channel{
		ID:           uuid.NewString(),
		Name:         name,
		Kind:         kind,
		Participants: participants,
		Nicknames:    map[string]string{},
		IsPrivate:    isPrivate || kind == models.ChannelDirect,
		CreatorID:    actor.ID,
		DirectKey:    directKey,
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if directKey != "" {
				// lost a creation race for the same pair; reuse the winner
				if existing, ferr := s.channels.FindDirect(ctx, directKey); ferr == nil {
					return existing, nil
				}
			} else {
				// lost a creation race for the same group name
				return nil, ErrChannelExists
			}
		}
		return nil, fmt.Errorf("create channel: %w", ErrInternal)
	}
	metrics.ChannelsCreated.WithLabelValues(string(kind)).Inc()
	s.pub.Publish(ctx, events.Event{Type: events.ChannelCreated, ChannelID: ch.ID, Payload: ch})
	return ch, nil
}

// CreateOrGetDirectChannel returns the direct channel between the actor
// and recipient, creating it on first contact. Lookup is by the unordered
// pair, so either side reaches the same channel.
func (s *ChatService) CreateOrGetDirectChannel(ctx context.Context, actorID, recipientID string) (*models.Channel, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if recipientID == actor.ID {
		return nil, ErrDirectSelf
	}
	recipient, err := s.users.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find recipient: %w", ErrInternal)
	}

	key := models.DirectKey(actor.ID, recipient.ID)
	if existing, err := s.channels.FindDirect(ctx, key); err == nil {
		return existing, nil
	}

	ch := &models.Channel{
		ID:           uuid.NewString(),
		Name:         actor.Username + "-" + recipient.Username,
		Kind:         models.ChannelDirect,
		Participants: []string{actor.ID, recipient.ID},
		Nicknames:    map[string]string{},
		IsPrivate:    true,
		CreatorID:    actor.ID,
		DirectKey:    key,
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if existing, ferr := s.channels.FindDirect(ctx, key); ferr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create direct channel: %w", ErrInternal)
	}
	metrics.ChannelsCreated.WithLabelValues(string(models.ChannelDirect)).Inc()
	s.pub.Publish(ctx, events.Event{Type: events.ChannelCreated, ChannelID: ch.ID, Payload: ch})
	return ch, nil
}

// CanAccessChannel reports whether the user may read a channel's
// contents. The websocket server consults this before honoring a
// subscription; HTTP reads enforce the same rule inline.
func (s *ChatService) CanAccessChannel(ctx context.Context, userID, channelID string) error {
	actor, err := s.actor(ctx, userID)
	if err != nil {
		return err
	}
	ch, err := s.channel(ctx, channelID)
	if err != nil {
		return err
	}
	if !canRead(ch, actor) {
		return ErrForbidden
	}
	return nil
}

// ListChannels returns the actor's channels plus public group channels.
func (s *ChatService) ListChannels(ctx context.Context, actorID string) ([]*models.Channel, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	chans, err := s.channels.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", ErrInternal)
	}
	return chans, nil
}

// GetMessages returns a channel page in chronological order.
func (s *ChatService) GetMessages(ctx context.Context, actorID, channelID string, limit int64, before time.Time) ([]*models.Message, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	ch, err := s.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !canRead(ch, actor) {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	msgs, err := s.messages.ListByChannel(ctx, ch.ID, limit, before)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", ErrInternal)
	}
	return msgs, nil
}

// SendMessage appends a message with a server-assigned id and timestamp.
// The sender's display name is captured at send time.
func (s *ChatService) SendMessage(ctx context.Context, actorID, channelID, content string) (*models.Message, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if utils.Blank(content) {
		return nil, ErrEmptyContent
	}
	ch, err := s.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !ch.HasParticipant(actor.ID) {
		return nil, ErrNotParticipant
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ID:         uuid.NewString(),
		ChannelID:  ch.ID,
		SenderID:   actor.ID,
		SenderName: actor.Username,
		Content:    content,
		Reactions:  map[string][]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", ErrInternal)
	}
	metrics.MessagesSent.Inc()
	s.pub.Publish(ctx, events.Event{Type: events.MessageCreated, ChannelID: ch.ID, Payload: msg})
	return msg, nil
}

// EditMessage replaces content. Only the original sender may edit; the
// edited flag is set once and never reverts.
func (s *ChatService) EditMessage(ctx context.Context, actorID, messageID, content string) (*models.Message, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if utils.Blank(content) {
		return nil, ErrEmptyContent
	}
	msg, err := s.message(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actor.ID {
		return nil, ErrForbidden
	}
	if msg.Content == content {
		return nil, ErrUnchangedContent
	}

	updated, err := s.messages.UpdateContent(ctx, msg.ID, content, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("edit message: %w", ErrInternal)
	}
	s.pub.Publish(ctx, events.Event{Type: events.MessageUpdated, ChannelID: updated.ChannelID, Payload: updated})
	return updated, nil
}

// DeleteMessage removes a message for everyone. Permitted for the sender
// or an administrator; terminal.
func (s *ChatService) DeleteMessage(ctx context.Context, actorID, messageID string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	msg, err := s.message(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != actor.ID && !actor.IsAdmin {
		return ErrForbidden
	}
	if err := s.messages.Delete(ctx, msg.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("delete message: %w", ErrInternal)
	}
	s.pub.Publish(ctx, events.Event{
		Type:      events.MessageDeleted,
		ChannelID: msg.ChannelID,
		Payload:   map[string]string{"id": msg.ID, "channel_id": msg.ChannelID},
	})
	return nil
}

// AddReaction records the actor under the emoji key. Set semantics:
// reapplying the same reaction changes nothing.
func (s *ChatService) AddReaction(ctx context.Context, actorID, messageID, emoji string) (*models.Message, error) {
	return s.reaction(ctx, actorID, messageID, emoji, s.messages.AddReaction)
}

// RemoveReaction removes the actor from the emoji key. Removing a
// reaction never applied is a no-op success.
func (s *ChatService) RemoveReaction(ctx context.Context, actorID, messageID, emoji string) (*models.Message, error) {
	return s.reaction(ctx, actorID, messageID, emoji, s.messages.RemoveReaction)
}

func (s *ChatService) reaction(
	ctx context.Context,
	actorID, messageID, emoji string,
	apply func(ctx context.Context, id, emoji, userID string) (*models.Message, error),
) (*models.Message, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if utils.Blank(emoji) {
		return nil, ErrEmptyContent
	}
	// the emoji becomes a Mongo field path under "reactions."; a dot or
	// dollar would address a nested field instead of a key
	if len(emoji) > maxReactionLen || strings.ContainsAny(emoji, ".$\x00") {
		return nil, ErrInvalidReaction
	}
	msg, err := s.message(ctx, messageID)
	if err != nil {
		return nil, err
	}
	ch, err := s.channel(ctx, msg.ChannelID)
	if err != nil {
		return nil, err
	}
	if !canRead(ch, actor) {
		return nil, ErrForbidden
	}

	updated, err := apply(ctx, msg.ID, emoji, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("update reaction: %w", ErrInternal)
	}
	s.pub.Publish(ctx, events.Event{Type: events.ReactionUpdated, ChannelID: updated.ChannelID, Payload: updated})
	return updated, nil
}

// SetNickname overrides the target's display name within one channel.
// Permitted for the channel creator or an administrator; an empty
// nickname clears the override.
func (s *ChatService) SetNickname(ctx context.Context, actorID, channelID, targetID, nickname string) (*models.Channel, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	ch, err := s.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !canManage(ch, actor) {
		return nil, ErrForbidden
	}
	if !ch.HasParticipant(targetID) {
		return nil, ErrNotParticipant
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		err = s.channels.ClearNickname(ctx, ch.ID, targetID)
	} else {
		err = s.channels.SetNickname(ctx, ch.ID, targetID, nickname)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("set nickname: %w", ErrInternal)
	}

	updated, err := s.channel(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, events.Event{Type: events.ChannelUpdated, ChannelID: updated.ID, Payload: updated})
	return updated, nil
}

// AddParticipant adds a member to a group channel. Idempotent.
func (s *ChatService) AddParticipant(ctx context.Context, actorID, channelID, targetID string) (*models.Channel, error) {
	_, ch, err := s.membershipChange(ctx, actorID, channelID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find target: %w", ErrInternal)
	}
	if err := s.channels.AddParticipant(ctx, ch.ID, targetID); err != nil {
		return nil, fmt.Errorf("add participant: %w", ErrInternal)
	}
	return s.publishChannelUpdate(ctx, ch.ID)
}

// RemoveParticipant removes a member from a group channel. The creator
// can never be removed, regardless of who asks.
func (s *ChatService) RemoveParticipant(ctx context.Context, actorID, channelID, targetID string) (*models.Channel, error) {
	_, ch, err := s.membershipChange(ctx, actorID, channelID)
	if err != nil {
		return nil, err
	}
	if targetID == ch.CreatorID {
		return nil, ErrCreatorRemoval
	}
	if !ch.HasParticipant(targetID) {
		return nil, ErrNotParticipant
	}
	if err := s.channels.RemoveParticipant(ctx, ch.ID, targetID); err != nil {
		return nil, fmt.Errorf("remove participant: %w", ErrInternal)
	}
	return s.publishChannelUpdate(ctx, ch.ID)
}

// DeleteChannel removes a group channel and purges its messages.
// Permitted for the creator or an administrator; direct channels are
// never deleted.
func (s *ChatService) DeleteChannel(ctx context.Context, actorID, channelID string) error {
	_, ch, err := s.membershipChange(ctx, actorID, channelID)
	if err != nil {
		return err
	}
	if err := s.channels.Delete(ctx, ch.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChannelNotFound
		}
		return fmt.Errorf("delete channel: %w", ErrInternal)
	}
	if err := s.messages.DeleteByChannel(ctx, ch.ID); err != nil {
		s.logger.Warnw("purge channel messages", "channel", ch.ID, "err", err)
	}
	s.pub.Publish(ctx, events.Event{
		Type:      events.ChannelDeleted,
		ChannelID: ch.ID,
		Payload:   map[string]string{"id": ch.ID},
	})
	return nil
}

func (s *ChatService) membershipChange(ctx context.Context, actorID, channelID string) (*models.User, *models.Channel, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	ch, err := s.channel(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	if ch.Kind == models.ChannelDirect {
		return nil, nil, ErrDirectImmutable
	}
	if !canManage(ch, actor) {
		return nil, nil, ErrForbidden
	}
	return actor, ch, nil
}

func (s *ChatService) publishChannelUpdate(ctx context.Context, channelID string) (*models.Channel, error) {
	updated, err := s.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, events.Event{Type: events.ChannelUpdated, ChannelID: updated.ID, Payload: updated})
	return updated, nil
}

func (s *ChatService) message(ctx context.Context, id string) (*models.Message, error) {
	msg, err := s.messages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", ErrInternal)
	}
	return msg, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
