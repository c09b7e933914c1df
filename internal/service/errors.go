package service

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidSignature    = errors.New("callback authenticity could not be established")
	ErrOrphanCallback      = errors.New("callback matches no transaction")
	ErrInsufficientBalance = errors.New("amount exceeds available balance")
	ErrPayoutPending       = errors.New("a payout request is already awaiting review")
	ErrPayoutProcessed     = errors.New("payout request already processed")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponNotApplicable = errors.New("coupon does not apply to any course in the cart")
)
