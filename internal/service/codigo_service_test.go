package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"
	"github.com/kevinserna01/react-cabina-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCodigoSvc(t *testing.T, committed ...string) (service.CodigoService, repository.ReservaCodigoRepository) {
	t.Helper()
	rdb, _ := newTestRedis(t)
	reservas := repository.NewReservaCodigoRepository(rdb)
	return service.NewCodigoService(newStubVentaRepo(committed...), reservas, 15*time.Minute), reservas
}

func TestCodigo_UltimoEmpty(t *testing.T) {
	svc, _ := buildCodigoSvc(t)
	resp, err := svc.Ultimo(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp.Codigo)
}

func TestCodigo_UltimoNumericOrder(t *testing.T) {
	svc, _ := buildCodigoSvc(t, "VTA-999", "VTA-1000", "VTA-007")
	resp, err := svc.Ultimo(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Codigo)
	assert.Equal(t, "VTA-1000", *resp.Codigo)
}

func codigoReq(codigo string) dto.CodigoVentaRequest {
	return dto.CodigoVentaRequest{Codigo: codigo, Sesion: uuid.NewString()}
}

func TestCodigo_ReservarContended(t *testing.T) {
	svc, _ := buildCodigoSvc(t)
	ctx := context.Background()

	first, err := svc.Reservar(ctx, uuid.New(), codigoReq("VTA-001"))
	require.NoError(t, err)
	assert.True(t, first.Reservado)

	second, err := svc.Reservar(ctx, uuid.New(), codigoReq("VTA-001"))
	require.NoError(t, err)
	assert.False(t, second.Reservado)
	assert.Equal(t, "VTA-001", second.Codigo)
}

func TestCodigo_SameWorkerTwoSessions(t *testing.T) {
	svc, reservas := buildCodigoSvc(t)
	ctx := context.Background()
	worker := uuid.New()
	tab1, tab2 := codigoReq("VTA-008"), codigoReq("VTA-008")

	first, err := svc.Reservar(ctx, worker, tab1)
	require.NoError(t, err)
	require.True(t, first.Reservado)

	second, err := svc.Reservar(ctx, worker, tab2)
	require.NoError(t, err)
	assert.False(t, second.Reservado)

	// releasing from the losing session leaves the winner's hold in place
	require.NoError(t, svc.Liberar(ctx, worker, tab2))
	holder, err := reservas.Owner(ctx, "VTA-008")
	require.NoError(t, err)
	assert.Equal(t, worker.String()+":"+tab1.Sesion, holder)

	// the same session asking again does not get a second grant
	again, err := svc.Reservar(ctx, worker, tab1)
	require.NoError(t, err)
	assert.False(t, again.Reservado)
}

func TestCodigo_ReservarCommittedCodeFails(t *testing.T) {
	svc, reservas := buildCodigoSvc(t, "VTA-004")
	ctx := context.Background()

	resp, err := svc.Reservar(ctx, uuid.New(), codigoReq("VTA-004"))
	require.NoError(t, err)
	assert.False(t, resp.Reservado)

	// the transient hold is dropped again
	owner, err := reservas.Owner(ctx, "VTA-004")
	require.NoError(t, err)
	assert.Empty(t, owner)
}

func TestCodigo_LiberarThenReserveByOther(t *testing.T) {
	svc, _ := buildCodigoSvc(t)
	ctx := context.Background()
	worker := uuid.New()
	req := codigoReq("VTA-010")

	_, err := svc.Reservar(ctx, worker, req)
	require.NoError(t, err)
	require.NoError(t, svc.Liberar(ctx, worker, req))

	resp, err := svc.Reservar(ctx, uuid.New(), codigoReq("VTA-010"))
	require.NoError(t, err)
	assert.True(t, resp.Reservado)
}

func TestCodigo_InvalidCode(t *testing.T) {
	svc, _ := buildCodigoSvc(t)
	ctx := context.Background()

	_, err := svc.Reservar(ctx, uuid.New(), codigoReq("VTA-abc"))
	assert.ErrorIs(t, err, service.ErrCodigoInvalido)
	err = svc.Liberar(ctx, uuid.New(), codigoReq("XYZ-001"))
	assert.ErrorIs(t, err, service.ErrCodigoInvalido)
}
