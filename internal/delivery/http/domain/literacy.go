package domain

var (
	STUDENT_LIST_FAILED        = "Error al obtener estudiantes"
	STUDENT_PROGRESS_FAILED    = "Error al obtener progreso del estudiante"
	EXERCISE_LIST_FAILED       = "Error al obtener ejercicios"
	EXERCISE_GENERATE_FAILED   = "Error al generar ejercicios"
	EXERCISE_GENERATE_SUCCESS  = "Ejercicios generados"
	EVALUATION_FAILED          = "Error al evaluar respuesta"
	EVALUATION_HISTORY_FAILED  = "Error al obtener el historial de respuestas"
	EVALUATION_HISTORY_SUCCESS = "Historial de respuestas"
	SESSION_GET_SUCCESS        = "Estado de la sesión"
	SESSION_LOGIN_SUCCESS      = "Sesión iniciada"
	SESSION_LOGIN_FAILED       = "No se pudo iniciar sesión"
	SESSION_LOGOUT_SUCCESS     = "Sesión cerrada"
	SESSION_LOAD_LEVEL_SUCCESS = "Ejercicios cargados"
	SESSION_LOAD_LEVEL_FAILED  = "No se pudieron cargar ejercicios"
	SESSION_BEGIN_SUCCESS      = "Ejercicio iniciado"
	SESSION_BEGIN_FAILED       = "No se pudo iniciar el ejercicio"
	SESSION_ANSWER_SUCCESS     = "Respuesta registrada"
	SESSION_ANSWER_FAILED      = "No se pudo registrar la respuesta"
	SESSION_SUBMIT_SUCCESS     = "Respuesta evaluada"
	SESSION_SUBMIT_FAILED      = "No se pudo evaluar la respuesta"
	SESSION_CANCEL_SUCCESS     = "Ejercicio cancelado"
	SESSION_DISMISS_SUCCESS    = "Resultado cerrado"
)
