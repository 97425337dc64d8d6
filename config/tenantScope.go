package config

import (
	"context"
	"strings"

	"github.com/URVIL2512/Finance-Suite-sub001/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantScopePlugin adds business_id = <ctx business> to queries, updates and deletes
// on tables that carry a business_id column and have no explicit tenant filter yet.
// Raw SQL is not scoped.
type TenantScopePlugin struct{}

func NewTenantScopePlugin() *TenantScopePlugin { return &TenantScopePlugin{} }

func (p *TenantScopePlugin) Name() string { return "tenant_scope" }

func (p *TenantScopePlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_scope:query", tenantScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_scope:row", tenantScopeCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_scope:update", tenantScopeCallback); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("tenant_scope:delete", tenantScopeCallback)
}

func tenantScopeCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil || db.Statement.Context == nil || db.Statement.Schema == nil {
		return
	}
	ctx := db.Statement.Context
	if skipTenantScope(ctx) {
		return
	}
	businessId, _ := appctx.GetString(ctx, appctx.ContextKeyBusinessId)
	if businessId == "" {
		return
	}
	if db.Statement.Schema.LookUpField("business_id") == nil {
		return
	}
	if whereMentionsBusinessId(db.Statement.Clauses["WHERE"]) {
		return
	}
	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "business_id"},
				Value:  businessId,
			},
		},
	})
}

func skipTenantScope(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, appctx.ContextKeySkipTenantScope)
	return ok && v
}

func whereMentionsBusinessId(c clause.Clause) bool {
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprMentionsBusinessId(e) {
			return true
		}
	}
	return false
}

func exprMentionsBusinessId(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return isBusinessIdColumn(v.Column)
	case clause.Neq:
		return isBusinessIdColumn(v.Column)
	case clause.IN:
		return isBusinessIdColumn(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprMentionsBusinessId(x) {
				return true
			}
		}
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprMentionsBusinessId(x) {
				return true
			}
		}
	case clause.Expr:
		return strings.Contains(strings.ToLower(v.SQL), "business_id")
	}
	return false
}

func isBusinessIdColumn(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "business_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "business_id")
	}
	return false
}
