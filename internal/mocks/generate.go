// Package mocks provides gomock implementations of the store, scope and
// password interfaces used by the Engine and flows tests.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	accounts := mocks.NewMockAccountStore(ctrl)
//	accounts.EXPECT().FindAccountByEmail(gomock.Any(), "a@b.edu").Return(store.Account{}, store.ErrNotFound)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=account_store_mock.go github.com/MrEthical07/campusauth/store AccountStore

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=avatar_store_mock.go github.com/MrEthical07/campusauth/store AvatarStore

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=membership_source_mock.go github.com/MrEthical07/campusauth/scope MembershipSource

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=hasher_mock.go github.com/MrEthical07/campusauth/password Hasher
