package utils

import (
	"os"
	"reflect"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

// get type name of struct
func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

/* Redis list cache for reference data (tags, companies) */

func listCacheKey[T any]() string {
	return "All" + GetTypeName[T]()
}

func modelCacheKey[T any](id int) string {
	return GetTypeName[T]() + ":" + strconv.Itoa(id)
}

// read a cached single record; nil result means cache miss
func RetrieveRedisModel[T any](id int) (*T, error) {
	var result T
	exists, err := config.GetRedisObject(modelCacheKey[T](id), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &result, nil
}

func StoreRedisModel[T any](id int, model *T) error {
	return config.SetRedisObject(modelCacheKey[T](id), model, GetCacheLifespan())
}

// drop the cached record after a mutation
func ClearRedisModel[T any](id int) error {
	return config.RemoveRedisKey(modelCacheKey[T](id))
}

// read cached list; nil result means cache miss
func RetrieveRedisList[T any]() ([]*T, error) {
	var results []*T
	exists, err := config.GetRedisObject(listCacheKey[T](), &results)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return results, nil
}

func StoreRedisList[T any](list []*T) error {
	return config.SetRedisObject(listCacheKey[T](), list, GetCacheLifespan())
}

// drop the cached list after a mutation
func ClearRedisList[T any]() error {
	return config.RemoveRedisKey(listCacheKey[T]())
}
