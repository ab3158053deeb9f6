package company

import "time"

// RoleAdmin は会社作成者に付与される役割です。役割ラベル自体は自由形式
// ですが、Admin は変更・削除から保護されます。
const RoleAdmin = "Admin"

// Company は雇用主企業エンティティです。名前は大文字小文字を区別せず
// 全体で一意です。
type Company struct {
	ID            int64
	Name          string
	Description   *string
	ContactPerson *string
	ContactPhone  *string
	ContactEmail  *string
	IsVerified    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Membership はユーザーと会社の所属関係です。(UserID, CompanyID) の組は
// 一意で、ひとりのユーザーは複数の会社に所属できます。
type Membership struct {
	ID        int64
	CompanyID int64
	UserID    string
	Role      string
	JoinedAt  time.Time
}
