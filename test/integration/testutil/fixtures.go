//go:build integration

package testutil

import (
	"time"

	"sarpras/pkg/model"
)

// BaseTime is a fixed Monday morning so windows are stable across runs.
var BaseTime = time.Date(2030, 3, 4, 9, 0, 0, 0, time.UTC)

func At(hours int) time.Time {
	return BaseTime.Add(time.Duration(hours) * time.Hour)
}

func Room(code string) model.Asset {
	return model.Asset{Code: code, Kind: model.AssetKindRoom, Name: "Room " + code}
}

func Vehicle(code string) model.Asset {
	return model.Asset{Code: code, Kind: model.AssetKindVehicle, Name: "Vehicle " + code}
}

func Item(code string, stock int) model.Asset {
	return model.Asset{Code: code, Kind: model.AssetKindItem, Name: "Item " + code, StockCount: &stock}
}

func Driver(code, phone string) model.Driver {
	return model.Driver{Code: code, Name: "Driver " + code, Phone: phone}
}

type ReservationBuilder struct {
	r model.Reservation
}

func NewRoomReservation(roomCode string, start, end time.Time) *ReservationBuilder {
	return &ReservationBuilder{r: model.Reservation{
		Kind:      model.ReservationKindRoom,
		AssetCode: roomCode,
		StartTime: start,
		EndTime:   end,
	}}
}

func NewVehicleReservation(vehicleCode string, start, end time.Time) *ReservationBuilder {
	return &ReservationBuilder{r: model.Reservation{
		Kind:      model.ReservationKindVehicle,
		AssetCode: vehicleCode,
		StartTime: start,
		EndTime:   end,
	}}
}

func (b *ReservationBuilder) WithDriver(ref string) *ReservationBuilder {
	b.r.Vehicle = &model.VehicleAssignment{DriverRef: ref}
	return b
}

func (b *ReservationBuilder) WithItem(code string, quantity int) *ReservationBuilder {
	if b.r.Room == nil {
		b.r.Room = &model.RoomAssignment{}
	}
	b.r.Room.Items = append(b.r.Room.Items, model.BorrowedItem{ItemCode: code, Quantity: quantity})
	return b
}

func (b *ReservationBuilder) WithPurpose(purpose string) *ReservationBuilder {
	b.r.Purpose = purpose
	return b
}

func (b *ReservationBuilder) Build() model.Reservation {
	return b.r
}
