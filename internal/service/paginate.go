package service

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const DefaultPageSize = 10

type Pagination struct {
	Page int
	Size int
}

func (p Pagination) normalized() Pagination {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}

// pageIDs counts the rows selected by b and returns the ids of the requested
// page. b must select a single id column.
func pageIDs(ctx context.Context, conn *gorm.DB, b squirrel.SelectBuilder, p Pagination) ([]uint64, int64, error) {
	p = p.normalized()
	if p.Page < 1 {
		return nil, 0, notFound("Invalid page.")
	}

	countSQL, countArgs, err := squirrel.Select("COUNT(*)").FromSelect(b, "filtered").ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build count sql")
	}
	var total int64
	if err := conn.WithContext(ctx).Raw(countSQL, countArgs...).Row().Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count")
	}

	offset := (p.Page - 1) * p.Size
	if p.Page > 1 && int64(offset) >= total {
		return nil, 0, notFound("Invalid page.")
	}

	ids, err := scanIDs(ctx, conn, b.Limit(uint64(p.Size)).Offset(uint64(offset)))
	if err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

func scanIDs(ctx context.Context, conn *gorm.DB, b squirrel.Sqlizer) ([]uint64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}
	rows, err := conn.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "query ids")
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan id")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "iterate ids")
}

// scanGrouped reads (owner id, string value) rows into a map keyed by owner.
func scanGrouped(ctx context.Context, conn *gorm.DB, b squirrel.Sqlizer) (map[uint64][]string, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}
	rows, err := conn.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "query pairs")
	}
	defer rows.Close()

	res := make(map[uint64][]string)
	for rows.Next() {
		var (
			id    uint64
			value string
		)
		if err := rows.Scan(&id, &value); err != nil {
			return nil, errors.Wrap(err, "scan pair")
		}
		res[id] = append(res[id], value)
	}
	return res, errors.Wrap(rows.Err(), "iterate pairs")
}

// scanIDGroups reads (owner id, id) rows into a map keyed by owner.
func scanIDGroups(ctx context.Context, conn *gorm.DB, b squirrel.Sqlizer) (map[uint64][]uint64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}
	rows, err := conn.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "query id pairs")
	}
	defer rows.Close()

	res := make(map[uint64][]uint64)
	for rows.Next() {
		var owner, id uint64
		if err := rows.Scan(&owner, &id); err != nil {
			return nil, errors.Wrap(err, "scan id pair")
		}
		res[owner] = append(res[owner], id)
	}
	return res, errors.Wrap(rows.Err(), "iterate id pairs")
}

func execSQL(ctx context.Context, conn *gorm.DB, b squirrel.Sqlizer) error {
	sql, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "build sql")
	}
	return conn.WithContext(ctx).Exec(sql, args...).Error
}
