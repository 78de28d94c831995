package repository

import (
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/models"
)

func TestKeywordClauseSkipsBlankColumns(t *testing.T) {
	clause, args := keywordClause("LIKE", "ab", "email", " name ", "")
	want := `(email LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\')`
	if clause != want {
		t.Fatalf("clause want %s got %s", want, clause)
	}
	if len(args) != 2 || args[0] != "%ab%" {
		t.Fatalf("unexpected args: %v", args)
	}

	if clause, args := keywordClause("ILIKE", "x"); clause != "" || args != nil {
		t.Fatalf("no columns should yield empty clause, got %q %v", clause, args)
	}
}

func TestKeywordClauseEscapesWildcards(t *testing.T) {
	_, args := keywordClause("LIKE", `50%_off\`, "code")
	if args[0] != `%50\%\_off\\%` {
		t.Fatalf("escaped pattern mismatch: %v", args[0])
	}
}

func TestLikeOperatorByDialect(t *testing.T) {
	if op := likeOperator(nil); op != "LIKE" {
		t.Fatalf("nil db should use LIKE, got %s", op)
	}
	db := openRepositoryTestDB(t, "like_operator")
	if op := likeOperator(db); op != "LIKE" {
		t.Fatalf("sqlite should use LIKE, got %s", op)
	}
}

func TestWhereKeywordMatchesLiteralPercent(t *testing.T) {
	db := openRepositoryTestDB(t, "where_keyword")
	now := time.Now()
	for _, code := range []string{"SAVE10", "FLAT%5", "FLATX5"} {
		row := models.Coupon{Code: code, DiscountType: "fixed", DiscountValue: models.NewMoneyFromInt(5), IsActive: true, CreatedAt: now, UpdatedAt: now}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create coupon %s failed: %v", code, err)
		}
	}
	var codes []string
	if err := whereKeyword(db.Model(&models.Coupon{}), "t%", "code").Pluck("code", &codes).Error; err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(codes) != 1 || codes[0] != "FLAT%5" {
		t.Fatalf("want only FLAT%%5, got %v", codes)
	}
}
