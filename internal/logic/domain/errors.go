package domain

import (
	"errors"
	"fmt"

	"nico-interface-sol/internal/types"
)

var (
	ErrMissingAccount          = errors.New("missing account")
	ErrComponentMismatch       = errors.New("component mismatch")
	ErrInvalidAssetLayout      = errors.New("invalid asset layout")
	ErrUnexpectedOwner         = errors.New("unexpected account owner")
	ErrUnsupportedStandard     = errors.New("unsupported token standard")
	ErrUnsupportedTransferPath = errors.New("unsupported transfer path")
	ErrMissingTransferContext  = errors.New("missing transfer context")
	ErrDeserialization         = errors.New("deserialization error")

	// Invoker 层错误
	ErrAccountNotProvided  = errors.New("instruction account not provided")
	ErrAccountBorrowed     = errors.New("account data still borrowed")
	ErrInvalidSignerSeeds  = errors.New("invalid signer seeds")
	ErrPrivilegeEscalation = errors.New("privilege escalation")
)

// AccountError 携带出错账户的标签与地址，Unwrap 为对应的哨兵错误
type AccountError struct {
	Err     error
	Label   string
	Address types.Pubkey
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("%v: %s [%s]", e.Err, e.Label, e.Address.ToBase58())
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

// NewAccountError 构造带标签的账户错误
func NewAccountError(err error, label string, address types.Pubkey) error {
	return &AccountError{Err: err, Label: label, Address: address}
}

// MissingAccount 账户池中找不到期望地址
func MissingAccount(label string, address types.Pubkey) error {
	return NewAccountError(ErrMissingAccount, label, address)
}

// ComponentMismatch 程序账户与期望程序 id 不一致
func ComponentMismatch(label string, got types.Pubkey) error {
	return NewAccountError(ErrComponentMismatch, label, got)
}
