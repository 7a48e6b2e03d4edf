package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//Create は住所を新規作成する。
	//作成後はaddress（IDなどが埋まったもの）を返す
	Create(ctx context.Context, address model.UserAddress) (model.UserAddress, error)

	//ユーザーが持つ住所一覧を返す（デフォルトが先頭）
	ListByUserID(ctx context.Context, userID string) ([]model.UserAddress, error)

	//住所IDから住所を1件取得
	FindByID(ctx context.Context, addressID string) (model.UserAddress, error)

	//住所がそのユーザーのものか」を確認
	IsOwnedByUser(ctx context.Context, addressID, userID string) (bool, error)

	//デフォルト住所の切り替えを行う。
	SetDefault(ctx context.Context, userID, addressID string) error
}
