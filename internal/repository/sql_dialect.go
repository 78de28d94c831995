package repository

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likeOperator postgres 下使用 ILIKE 忽略大小写，其余方言 LIKE 本身即不区分 ASCII 大小写
func likeOperator(db *gorm.DB) string {
	if db != nil && db.Dialector != nil && strings.HasPrefix(strings.ToLower(db.Dialector.Name()), "postgres") {
		return "ILIKE"
	}
	return "LIKE"
}

// keywordClause 生成 "(a LIKE ? OR b LIKE ?)" 形式的条件与对应参数，无有效列时返回空串
func keywordClause(operator, keyword string, columns ...string) (string, []interface{}) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	var b strings.Builder
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		if len(args) > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString(column + " " + operator + ` ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	if len(args) == 0 {
		return "", nil
	}
	return "(" + b.String() + ")", args
}

// whereKeyword 关键字为空时原样返回查询
func whereKeyword(query *gorm.DB, keyword string, columns ...string) *gorm.DB {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return query
	}
	clause, args := keywordClause(likeOperator(query), keyword, columns...)
	if clause == "" {
		return query
	}
	return query.Where(clause, args...)
}
