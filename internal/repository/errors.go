package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"qa_forum_backend/internal/util"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}
	// SQLite 驱动未翻译时的兜底
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY constraint failed")
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "connection refused")
}

// storageErr 将驱动错误归入 util 中的错误分类，已分类的错误原样返回
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *util.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case isDuplicate(err):
		return fmt.Errorf("%w: %s", util.ErrDuplicate, err.Error())
	case isUnavailable(err):
		return fmt.Errorf("%w: %s", util.ErrStorageUnavailable, err.Error())
	}
	return err
}

func notFoundOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return storageErr(err)
}

func duplicateOr(err, duplicate error) error {
	if err != nil && isDuplicate(err) {
		return duplicate
	}
	return storageErr(err)
}

// Transaction 在单个事务内执行 fn，fn 内只能使用 tx
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return storageErr(db.WithContext(ctx).Transaction(fn))
}
