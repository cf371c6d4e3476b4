package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lumina/backend/leaderboard"
	"lumina/backend/models"
)

// GroupView is a group as seen by one user.
type GroupView struct {
	models.StudyGroup
	MemberCount int64 `json:"member_count"`
	IsMember    bool  `json:"is_member"`
	IsCreator   bool  `json:"is_creator"`
}

// CreateGroup stores the group and makes its creator the first member.
func (r *Repository) CreateGroup(ctx context.Context, group *models.StudyGroup) error {
	return r.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members", "Creator").Create(group).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		return insertMember(tx, group.ID, group.CreatorID)
	})
}

// VisibleGroups lists public groups plus every group the user created or belongs to.
func (r *Repository) VisibleGroups(ctx context.Context, userID uint) ([]GroupView, error) {
	db := r.db(ctx)
	memberOf := db.Table(models.GroupMemberTable).Select("study_group_id").Where("user_id = ?", userID)

	var groups []models.StudyGroup
	err := db.Where("is_public = ?", true).
		Or("creator_id = ?", userID).
		Or("id IN (?)", memberOf).
		Order("created_at DESC").Order("id DESC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if len(groups) == 0 {
		return []GroupView{}, nil
	}

	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}

	var counts []struct {
		StudyGroupID uint
		Members      int64
	}
	err = db.Table(models.GroupMemberTable).
		Select("study_group_id, COUNT(*) AS members").
		Where("study_group_id IN ?", ids).
		Group("study_group_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	countByGroup := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByGroup[c.StudyGroupID] = c.Members
	}

	var joined []uint
	err = db.Table(models.GroupMemberTable).
		Where("user_id = ? AND study_group_id IN ?", userID, ids).
		Pluck("study_group_id", &joined).Error
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}
	isMember := make(map[uint]bool, len(joined))
	for _, id := range joined {
		isMember[id] = true
	}

	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, GroupView{
			StudyGroup:  g,
			MemberCount: countByGroup[g.ID],
			IsMember:    isMember[g.ID],
			IsCreator:   g.CreatorID == userID,
		})
	}
	return views, nil
}

// GroupForUser loads a group the user may see. Missing groups and private
// groups the user neither created nor joined both yield ErrNotFound.
func (r *Repository) GroupForUser(ctx context.Context, groupID, userID uint) (*GroupView, error) {
	var group models.StudyGroup
	if err := r.db(ctx).First(&group, groupID).Error; err != nil {
		return nil, notFound(err)
	}

	member, err := r.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	isCreator := group.CreatorID == userID
	if !group.IsPublic && !member && !isCreator {
		return nil, ErrNotFound
	}

	count, err := r.countMembers(r.db(ctx), groupID)
	if err != nil {
		return nil, err
	}
	return &GroupView{StudyGroup: group, MemberCount: count, IsMember: member, IsCreator: isCreator}, nil
}

func (r *Repository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	return isMember(r.db(ctx), groupID, userID)
}

// JoinGroup adds the membership edge. The group must be visible to the user.
func (r *Repository) JoinGroup(ctx context.Context, groupID, userID uint) error {
	return r.db(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.StudyGroup
		if err := tx.First(&group, groupID).Error; err != nil {
			return notFound(err)
		}
		member, err := isMember(tx, groupID, userID)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyMember
		}
		if !group.IsPublic && group.CreatorID != userID {
			return ErrNotFound
		}
		return insertMember(tx, groupID, userID)
	})
}

// LeaveGroup removes exactly one membership edge. Creators may leave too;
// the creator attribute is kept.
func (r *Repository) LeaveGroup(ctx context.Context, groupID, userID uint) error {
	return r.db(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.StudyGroup
		if err := tx.First(&group, groupID).Error; err != nil {
			return notFound(err)
		}
		res := tx.Exec("DELETE FROM "+models.GroupMemberTable+" WHERE study_group_id = ? AND user_id = ?", groupID, userID)
		if res.Error != nil {
			return fmt.Errorf("leave group: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if !group.IsPublic && group.CreatorID != userID {
				return ErrNotFound
			}
			return ErrNotMember
		}
		return nil
	})
}

// GroupMembers returns the group's members as leaderboard input.
func (r *Repository) GroupMembers(ctx context.Context, groupID uint) ([]leaderboard.Member, error) {
	q := r.db(ctx).Model(&models.User{}).
		Joins("JOIN "+models.GroupMemberTable+" m ON m.user_id = users.id").
		Where("m.study_group_id = ?", groupID)
	return r.rankedMembers(q)
}

func (r *Repository) countMembers(tx *gorm.DB, groupID uint) (int64, error) {
	var n int64
	if err := tx.Table(models.GroupMemberTable).Where("study_group_id = ?", groupID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func isMember(tx *gorm.DB, groupID, userID uint) (bool, error) {
	var n int64
	err := tx.Table(models.GroupMemberTable).
		Where("study_group_id = ? AND user_id = ?", groupID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return n > 0, nil
}

func insertMember(tx *gorm.DB, groupID, userID uint) error {
	err := tx.Exec("INSERT INTO "+models.GroupMemberTable+" (study_group_id, user_id) VALUES (?, ?)", groupID, userID).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent join won the race
		return ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}
