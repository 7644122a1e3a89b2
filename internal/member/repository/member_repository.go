package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realtime_chat_service/internal/member/domain"
	"realtime_chat_service/pkg/errs"
)

// MemberRepository definition get Member info
type MemberRepository interface {
	CreateUser(ctx context.Context, member *domain.Member) error
	FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
	ListActive(ctx context.Context) ([]domain.Member, error)
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) CreateUser(ctx context.Context, member *domain.Member) error {
	row := r.db.QueryRow(ctx,
		"INSERT INTO users(username, email, hashed_password, is_active) VALUES ($1, $2, $3, true) RETURNING id",
		member.Username, member.Email, member.HashedPassword,
	)
	return row.Scan(&member.ID)
}

func (r *memberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	queryStr := "SELECT id, username, email, hashed_password, is_active FROM users WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if memberQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *memberQuery.ID)
		paramCount++
	}
	if memberQuery.Username != nil {
		queryStr += fmt.Sprintf(" AND username = $%d", paramCount)
		params = append(params, *memberQuery.Username)
		paramCount++
	}
	if memberQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *memberQuery.Email)
		paramCount++
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var member domain.Member
	err := row.Scan(&member.ID, &member.Username, &member.Email, &member.HashedPassword, &member.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("no member found with given criteria")
		}
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) ListActive(ctx context.Context) ([]domain.Member, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, username, email, hashed_password, is_active FROM users WHERE is_active ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Email, &m.HashedPassword, &m.IsActive); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
