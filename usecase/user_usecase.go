package usecase

import (
	"context"
	"crypto/md5"
	"fmt"
	"strconv"
	"time"

	"social-calendar/domain/dto"
	"social-calendar/domain/model"
	"social-calendar/domain/repository"
	"social-calendar/infrastructure/logger"
	"social-calendar/infrastructure/utils"
)

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepo  repository.IUser
	secretKey string
}

func NewUserUsecase(userRepo repository.IUser, secretKey string) IUserUsecase {
	return &userUsecase{userRepo: userRepo, secretKey: secretKey}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	var res dto.Res
	user, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("user_name", req.UserName).Info("login for unknown user")
		res.ResponseCode = "404"
		res.ResponseMessage = "User not found"
		return res
	}

	hashed := fmt.Sprintf("%x", md5.Sum([]byte(req.Password)))
	if hashed != user.Password {
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid credentials"
		return res
	}

	token, err := utils.GenerateToken(map[string]interface{}{
		"user_name": user.UserName,
		"iss":       strconv.Itoa(user.ID),
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	}, u.secretKey)
	if err != nil {
		res.ResponseCode = "500"
		res.ResponseMessage = "Error while generate token"
		return res
	}

	res.ResponseCode = "00"
	res.ResponseMessage = "Success"
	res.Data = map[string]string{"access_token": token}
	return res
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	var res dto.Res
	if _, err := u.userRepo.GetByUserName(ctx, req.UserName); err == nil {
		res.ResponseCode = "409"
		res.ResponseMessage = "User already exists"
		return res
	}

	user := model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: req.Password,
		Email:    req.Email,
	}
	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while create user")
		res.ResponseCode = "500"
		res.ResponseMessage = "Error while create user"
		return res
	}

	res.ResponseCode = "00"
	res.ResponseMessage = "Success"
	return res
}
